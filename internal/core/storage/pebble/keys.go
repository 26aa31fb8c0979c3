package pebblestore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cockroachdb/pebble"
)

// Key layout. Topics are length-prefixed so a topic can never be a prefix of another.
//
//	e/<len16><topic><event_id>  -> stored event record
//	r/<seq8>                    -> event key (global recency index)
//	t/<len16><topic><seq8>      -> event key (per-topic recency index)
//	k/<topic>                   -> empty (topic set)
//	c/<name>                    -> int64 counter, updated via merge
var (
	prefixEvent   = []byte("e/")
	prefixRecency = []byte("r/")
	prefixTopic   = []byte("t/")
	prefixTopics  = []byte("k/")
	prefixCounter = []byte("c/")

	keyReceived  = counterKey("received")
	keyUnique    = counterKey("unique_processed")
	keyDuplicate = counterKey("duplicate_dropped")
	keyStored    = counterKey("stored_events")
)

func topicPart(topic string) []byte {
	b := make([]byte, 2, 2+len(topic))
	binary.BigEndian.PutUint16(b, uint16(len(topic)))
	return append(b, topic...)
}

func eventKey(topic, eventID string) []byte {
	k := append([]byte(nil), prefixEvent...)
	k = append(k, topicPart(topic)...)
	return append(k, eventID...)
}

func recencyKey(seq int64) []byte {
	k := append([]byte(nil), prefixRecency...)
	return binary.BigEndian.AppendUint64(k, uint64(seq))
}

func topicIndexPrefix(topic string) []byte {
	k := append([]byte(nil), prefixTopic...)
	return append(k, topicPart(topic)...)
}

func topicIndexKey(topic string, seq int64) []byte {
	return binary.BigEndian.AppendUint64(topicIndexPrefix(topic), uint64(seq))
}

func topicSetKey(topic string) []byte {
	k := append([]byte(nil), prefixTopics...)
	return append(k, topic...)
}

func counterKey(name string) []byte {
	k := append([]byte(nil), prefixCounter...)
	return append(k, name...)
}

// upperBound returns the smallest key greater than every key carrying prefix.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func seqFromKey(key []byte) (int64, error) {
	if len(key) < 8 {
		return 0, fmt.Errorf("index key too short: %d bytes", len(key))
	}
	return int64(binary.BigEndian.Uint64(key[len(key)-8:])), nil
}

func encodeInt64(v int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(v))
}

func decodeInt64(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("counter value must be 8 bytes, got %d", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// counterMerger adds int64 deltas, so counter bumps never read-modify-write.
var counterMerger = &pebble.Merger{
	Name: "logagg.int64add.v1",
	Merge: func(key, value []byte) (pebble.ValueMerger, error) {
		n, err := decodeInt64(value)
		if err != nil {
			return nil, err
		}
		return &int64Adder{sum: n}, nil
	},
}

type int64Adder struct {
	sum int64
}

func (a *int64Adder) MergeNewer(value []byte) error {
	return a.add(value)
}

func (a *int64Adder) MergeOlder(value []byte) error {
	return a.add(value)
}

func (a *int64Adder) add(value []byte) error {
	n, err := decodeInt64(value)
	if err != nil {
		return err
	}
	a.sum += n
	return nil
}

func (a *int64Adder) Finish(includesBase bool) ([]byte, io.Closer, error) {
	return encodeInt64(a.sum), nil, nil
}

var errCorruptRecord = errors.New("corrupt event record")
