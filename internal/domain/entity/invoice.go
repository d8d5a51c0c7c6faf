package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de anulación admitidos por el SAR.
const (
	VoidReasonDataEntryError = "ERROR_REGISTRO"
	VoidReasonReturn         = "DEVOLUCION"
	VoidReasonLaterDiscount  = "DESCUENTO_POSTERIOR"
	VoidReasonDuplicate      = "DUPLICADO"
	VoidReasonOther          = "OTRO"
)

// ValidVoidReason indica si el motivo pertenece al catálogo de anulación.
func ValidVoidReason(reason string) bool {
	switch reason {
	case VoidReasonDataEntryError, VoidReasonReturn, VoidReasonLaterDiscount,
		VoidReasonDuplicate, VoidReasonOther:
		return true
	}
	return false
}

// Invoice es el documento fiscal emitido. Es inmutable después de la emisión,
// salvo los campos de anulación, que cambian una única vez.
// Los campos CAI, AuthorizedRange y CAIExpiration son un snapshot de la
// autorización al momento de emitir: cambios posteriores al CAI no alteran
// facturas históricas.
type Invoice struct {
	ID            string
	CompanyID     string
	BranchID      string
	SaleID        string // 1:1 — una venta tiene a lo sumo una factura no anulada
	CorrelativeID string

	InvoiceNumber   string // Número fiscal completo (FormattedNumber del correlativo)
	CAI             string
	CAIExpiration   time.Time
	AuthorizedRange string // "000-001-01-00000001 al 000-001-01-00005000"

	CustomerRTN  string // RTN normalizado a ancho fijo; consumidor final si no hay cliente
	CustomerName string

	SubtotalExempt decimal.Decimal
	SubtotalTaxed  decimal.Decimal
	Tax            decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
	TotalInWords   string // "CIEN LEMPIRAS CON 00/100"

	IssuedAt time.Time
	IssuedBy string // Usuario que emitió (auditoría)

	IsVoided   bool
	VoidReason string
	VoidNotes  string
	VoidedAt   *time.Time
	VoidedBy   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
