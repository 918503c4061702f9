package redis

// Streams is a Redis stream key to last-seen-ID mapping, used to resume
// XREAD calls where a previous read left off.
type Streams map[string]string

// Option returns the stream key to ID mapping as a slice of stream keys
// followed by their IDs, in the shape XREAD's STREAMS option expects.
func (s Streams) Option() []string {
	streams := make([]string, 0, len(s)*2)
	ids := make([]string, 0, len(s))

	for key, id := range s {
		streams = append(streams, key)
		ids = append(ids, id)
	}

	return append(streams, ids...)
}
