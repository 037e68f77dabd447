package repository

import "context"

// VisitCounter contador persistente de visitas de la página de inicio.
type VisitCounter interface {
	Get(ctx context.Context) (int64, error)
	// Increment suma uno de forma atómica y devuelve el nuevo valor.
	Increment(ctx context.Context) (int64, error)
}
