package partition

import "hash/fnv"

// Count is the fixed number of key stripes.
const Count = 256

// For returns the stripe for an event key.
// Stable and deterministic: the same (topic, eventID) always maps to the same stripe,
// so two writers of one key always contend on the same lock while unrelated keys spread out.
func For(topic, eventID string) int {
	h := fnv.New32a()
	h.Write([]byte(topic))
	h.Write([]byte{0})
	h.Write([]byte(eventID))
	return int(h.Sum32() % Count)
}
