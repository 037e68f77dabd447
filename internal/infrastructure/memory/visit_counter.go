package memory

import "context"

// VisitCounter contador de visitas en proceso; se pierde al reiniciar.
type VisitCounter struct {
	s *Store
}

// NewVisitCounter contador sobre el store.
func NewVisitCounter(s *Store) *VisitCounter {
	return &VisitCounter{s: s}
}

func (c *VisitCounter) Get(ctx context.Context) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.visits, nil
}

// Increment suma uno y devuelve el nuevo valor.
func (c *VisitCounter) Increment(ctx context.Context) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.visits++
	return c.s.visits, nil
}
