package altitude

import "sync"

// state is the value shared between the telemetry handler and Render.
type state struct {
	mu       sync.Mutex
	altitude int
}

func (s *state) store(v int) {
	s.mu.Lock()
	s.altitude = v
	s.mu.Unlock()
}

func (s *state) load() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.altitude
}
