package postgres

// SQL queries for event storage and aggregate counters

const (
	// queryInsertIfAbsent is the conditional insert behind deduplication.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for duplicates; the unique
	// index on (topic, event_id) is the serialization point for concurrent writers.
	queryInsertIfAbsent = `
		INSERT INTO events (
			topic, event_id, timestamp, source, payload, received_at, processed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (topic, event_id) DO NOTHING
		RETURNING ingest_seq
	`

	// queryIncrementCounters bumps the single stats row in place.
	// $1/$2 are 1/0 for an insert and 0/1 for a duplicate.
	queryIncrementCounters = `
		UPDATE event_stats
		SET received          = received + 1,
		    unique_processed  = unique_processed + $1,
		    duplicate_dropped = duplicate_dropped + $2
		WHERE id = 1
	`

	queryReadCounters = `
		SELECT received, unique_processed, duplicate_dropped
		FROM event_stats
		WHERE id = 1
	`

	queryDistinctTopics = `SELECT DISTINCT topic FROM events ORDER BY topic`

	queryCountEvents = `SELECT COUNT(*) FROM events`

	queryListEventsNewest = `
		SELECT
			ingest_seq, topic, event_id, timestamp, source, payload, received_at, processed_at
		FROM events
		ORDER BY ingest_seq DESC
		LIMIT $1
	`

	queryListEventsOldest = `
		SELECT
			ingest_seq, topic, event_id, timestamp, source, payload, received_at, processed_at
		FROM events
		ORDER BY ingest_seq ASC
		LIMIT $1
	`

	queryListTopicEventsNewest = `
		SELECT
			ingest_seq, topic, event_id, timestamp, source, payload, received_at, processed_at
		FROM events
		WHERE topic = $1
		ORDER BY ingest_seq DESC
		LIMIT $2
	`

	queryListTopicEventsOldest = `
		SELECT
			ingest_seq, topic, event_id, timestamp, source, payload, received_at, processed_at
		FROM events
		WHERE topic = $1
		ORDER BY ingest_seq ASC
		LIMIT $2
	`

	queryResetEvents = `TRUNCATE TABLE events RESTART IDENTITY`

	queryResetCounters = `
		UPDATE event_stats
		SET received = 0, unique_processed = 0, duplicate_dropped = 0
		WHERE id = 1
	`

	querySchemaTables = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_name IN ('events', 'event_stats')
	`
)
