package redisstore

// Lua scripts run atomically on the Redis server, which makes each one an
// indivisible step. Scripts touching event hashes by name (list/reset) assume
// a single Redis node.

// scriptSaveEvent is the conditional insert. Returns 0 when the key exists,
// otherwise the newly assigned sequence.
//
//	KEYS: event, seq, recent, topic recent, topics, stats
//	ARGV: topic, event_id, timestamp, source, payload, received_at, processed_at, count
const scriptSaveEvent = `
local exists = redis.call('EXISTS', KEYS[1])
if exists == 1 then
  if ARGV[8] == '1' then
    redis.call('HINCRBY', KEYS[6], 'received', 1)
    redis.call('HINCRBY', KEYS[6], 'duplicate_dropped', 1)
  end
  return 0
end
local seq = redis.call('INCR', KEYS[2])
redis.call('HSET', KEYS[1],
  'seq', seq,
  'topic', ARGV[1],
  'event_id', ARGV[2],
  'timestamp', ARGV[3],
  'source', ARGV[4],
  'payload', ARGV[5],
  'received_at', ARGV[6],
  'processed_at', ARGV[7])
redis.call('ZADD', KEYS[3], seq, KEYS[1])
redis.call('ZADD', KEYS[4], seq, KEYS[1])
redis.call('SADD', KEYS[5], ARGV[1])
if ARGV[8] == '1' then
  redis.call('HINCRBY', KEYS[6], 'received', 1)
  redis.call('HINCRBY', KEYS[6], 'unique_processed', 1)
end
return seq
`

// KEYS: stats. ARGV: outcome field.
const scriptIncrementCounters = `
redis.call('HINCRBY', KEYS[1], 'received', 1)
redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
return 1
`

// KEYS: recency index. ARGV: limit, order ("asc" or "desc").
const scriptListEvents = `
local stop = tonumber(ARGV[1]) - 1
local keys
if ARGV[2] == 'asc' then
  keys = redis.call('ZRANGE', KEYS[1], 0, stop)
else
  keys = redis.call('ZREVRANGE', KEYS[1], 0, stop)
end
local out = {}
for i, k in ipairs(keys) do
  out[i] = redis.call('HMGET', k, 'seq', 'topic', 'event_id', 'timestamp', 'source', 'payload', 'received_at', 'processed_at')
end
return out
`

// KEYS: stats.
const scriptReadCounters = `
return redis.call('HMGET', KEYS[1], 'received', 'unique_processed', 'duplicate_dropped')
`

// KEYS: stats, topics, recent.
const scriptSnapshot = `
local counters = redis.call('HMGET', KEYS[1], 'received', 'unique_processed', 'duplicate_dropped')
local topics = redis.call('SMEMBERS', KEYS[2])
local count = redis.call('ZCARD', KEYS[3])
return {counters, topics, count}
`

// KEYS: recent, seq, topics, stats. ARGV: topic recent key prefix.
const scriptReset = `
local keys = redis.call('ZRANGE', KEYS[1], 0, -1)
for _, k in ipairs(keys) do
  redis.call('DEL', k)
end
local topics = redis.call('SMEMBERS', KEYS[3])
for _, t in ipairs(topics) do
  redis.call('DEL', ARGV[1] .. string.len(t) .. ':' .. t)
end
redis.call('DEL', KEYS[1], KEYS[2], KEYS[3], KEYS[4])
return 1
`
