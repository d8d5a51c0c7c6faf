package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
)

// InvoiceStats son los agregados de emisión sobre un rango de fechas, para
// los colaboradores de reportería.
type InvoiceStats struct {
	IssuedCount    int64
	VoidedCount    int64
	SubtotalExempt decimal.Decimal
	SubtotalTaxed  decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// InvoiceRepository define el puerto de persistencia para facturas y su
// auditoría de anulación.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)

	// GetActiveBySaleID devuelve la factura no anulada de la venta (a lo sumo
	// una). Devuelve nil, nil si la venta no tiene factura vigente.
	GetActiveBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error)

	ListByDateRange(ctx context.Context, companyID string, from, to time.Time) ([]*entity.Invoice, error)

	// ListByRTN filtra por RTN del cliente dentro de un rango de fechas
	// (reportes al SAR).
	ListByRTN(ctx context.Context, companyID, rtn string, from, to time.Time) ([]*entity.Invoice, error)

	// MarkVoided estampa los campos de anulación; la factura no admite ninguna
	// otra mutación después de emitida.
	MarkVoided(ctx context.Context, inv *entity.Invoice) error

	// CreateVoidAudit agrega el registro append-only de la anulación.
	CreateVoidAudit(ctx context.Context, audit *entity.VoidAudit) error

	Stats(ctx context.Context, companyID string, from, to time.Time) (*InvoiceStats, error)
}
