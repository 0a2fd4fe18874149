package mqtt

import "github.com/sirupsen/logrus"

// bufferedMsg is a serialized publish waiting for the broker.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer holds publishes made while offline. Once full, each push evicts
// the oldest message. Callers synchronize access.
type ringBuffer struct {
	slots   []bufferedMsg
	oldest  int
	n       int
	dropped int // evictions since the last drain
	log     *logrus.Entry
}

func newRingBuffer(size int, log *logrus.Entry) *ringBuffer {
	return &ringBuffer{slots: make([]bufferedMsg, max(size, 1)), log: log}
}

func (r *ringBuffer) push(m bufferedMsg) {
	size := len(r.slots)
	if r.n < size {
		r.slots[(r.oldest+r.n)%size] = m
		r.n++
		return
	}
	if r.dropped == 0 {
		r.log.WithField("capacity", size).Warn("offline buffer full, dropping oldest events")
	}
	r.dropped++
	r.slots[r.oldest] = m
	r.oldest = (r.oldest + 1) % size
}

// drainAll empties the buffer, returning messages oldest first.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.n == 0 {
		return nil
	}
	out := make([]bufferedMsg, 0, r.n)
	for i := 0; i < r.n; i++ {
		out = append(out, r.slots[(r.oldest+i)%len(r.slots)])
	}
	if r.dropped > 0 {
		r.log.WithField("dropped", r.dropped).Warn("events lost while offline")
	}
	r.oldest, r.n, r.dropped = 0, 0, 0
	return out
}

func (r *ringBuffer) len() int {
	return r.n
}
