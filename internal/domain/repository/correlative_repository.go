package repository

import (
	"context"
	"time"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
)

// CorrelativeRepository define el puerto de persistencia para el pool de
// correlativos de un CAI. El pool se crea en bloque y sus filas nunca se
// borran; solo cambian de estado hacia adelante.
type CorrelativeRepository interface {
	// CreateBatch inserta un lote del pool. La generación escribe en lotes
	// acotados para mantener transacciones pequeñas con rangos grandes.
	CreateBatch(ctx context.Context, batch []*entity.Correlative) error

	GetByID(ctx context.Context, id string) (*entity.Correlative, error)
	CountByAuthorization(ctx context.Context, authorizationID string) (int64, error)
	CountAvailable(ctx context.Context, authorizationID string) (int64, error)

	// LockNextAvailable toma bloqueo exclusivo sobre el correlativo DISPONIBLE
	// de menor número y lo devuelve; el bloqueo se sostiene hasta el commit de
	// la transacción en curso. Un asignador concurrente sobre el mismo CAI no
	// puede obtener la misma fila. Devuelve nil, nil con el pool agotado.
	LockNextAvailable(ctx context.Context, authorizationID string) (*entity.Correlative, error)

	// MarkUsed transiciona DISPONIBLE → USADO; falla si el estado ya cambió.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error

	// MarkVoided transiciona USADO → ANULADO (terminal); falla desde cualquier
	// otro estado: un número anulado jamás vuelve a ser asignable.
	MarkVoided(ctx context.Context, id string, voidedAt time.Time) error
}
