package repository

import (
	"context"
	"time"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
)

// AuthorizationRepository define el puerto de persistencia para los CAI.
type AuthorizationRepository interface {
	Create(ctx context.Context, auth *entity.Authorization) error
	GetByID(ctx context.Context, id string) (*entity.Authorization, error)

	// FindActive devuelve el CAI asignable para la sucursal y tipo de documento:
	// estado ACTIVA y fecha límite no vencida a la fecha dada. Si hubiera más de
	// uno, la selección es determinista: fecha límite más próxima primero.
	// Devuelve nil, nil si no existe.
	FindActive(ctx context.Context, companyID, branchID, documentType string, now time.Time) (*entity.Authorization, error)

	// HasDepleted indica si existe un CAI AGOTADA para la sucursal y tipo de
	// documento. El asignador lo usa para distinguir "nunca hubo CAI usable"
	// de "el CAI se quedó sin números" (esto último exige registrar uno nuevo).
	HasDepleted(ctx context.Context, companyID, branchID, documentType string) (bool, error)

	ListByCompany(ctx context.Context, companyID string) ([]*entity.Authorization, error)

	// IncrementUsed incrementa el contador de usados en la misma transacción en
	// la que se asigna el correlativo; nunca decrementa.
	IncrementUsed(ctx context.Context, id string) error

	// SetTotalDocuments fija el total al terminar la generación del pool.
	SetTotalDocuments(ctx context.Context, id string, total int64) error

	// MarkDepleted transiciona a AGOTADA; es un no-op si ya lo está.
	MarkDepleted(ctx context.Context, id string) error
}
