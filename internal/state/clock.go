package state

import "sync"

// Clock is a logical counter. The connection ticks it for every outbound
// command so receivers can notice reordering.
type Clock struct {
	counter uint64
	mu      sync.Mutex
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter
}

// Sequences remembers the last sequence number seen from each sender.
type Sequences struct {
	last map[UserID]uint64
	mu   sync.Mutex
}

// Observe records seq for sender and reports whether it arrived in order.
// Zero means the sender does not stamp its messages and is always in order.
func (s *Sequences) Observe(sender UserID, seq uint64) bool {
	if seq == 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		s.last = make(map[UserID]uint64)
	}
	prev, seen := s.last[sender]
	if seen && seq <= prev {
		return false
	}
	s.last[sender] = seq
	return true
}

// Forget drops the history of sender, e.g. after it disconnects.
func (s *Sequences) Forget(sender UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, sender)
}
