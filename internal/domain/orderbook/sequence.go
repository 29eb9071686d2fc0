package orderbook

import "sync"

// Sequence detecta saltos en un stream numerado (sequence_num del feed es por conexión).
type Sequence struct {
	mu   sync.Mutex
	last int64
}

// Check registra seq y devuelve false si no es last+1. El primero siempre vale.
func (s *Sequence) Check(seq int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.last
	s.last = seq
	if prev == 0 {
		return true
	}
	return seq == prev+1
}

// Set registra seq sin validar.
func (s *Sequence) Set(seq int64) {
	s.mu.Lock()
	s.last = seq
	s.mu.Unlock()
}

func (s *Sequence) Reset() {
	s.mu.Lock()
	s.last = 0
	s.mu.Unlock()
}

func (s *Sequence) Last() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
