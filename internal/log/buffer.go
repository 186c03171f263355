package log

// ringBuffer keeps the most recent entries in insertion order.
type ringBuffer struct {
	entries []string
	start   int
	size    int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{entries: make([]string, capacity)}
}

func (r *ringBuffer) add(entry string) {
	capacity := len(r.entries)
	if r.size < capacity {
		r.entries[(r.start+r.size)%capacity] = entry
		r.size++
		return
	}
	r.entries[r.start] = entry
	r.start = (r.start + 1) % capacity
}

func (r *ringBuffer) last(n int) []string {
	if n <= 0 || r.size == 0 {
		return nil
	}
	n = min(n, r.size)
	out := make([]string, 0, n)
	for i := r.size - n; i < r.size; i++ {
		out = append(out, r.entries[(r.start+i)%len(r.entries)])
	}
	return out
}

func (r *ringBuffer) clear() {
	clear(r.entries)
	r.start = 0
	r.size = 0
}
