package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterAuthorizationRequest body para POST /api/fiscal/authorizations.
// Los códigos de formato (establecimiento, punto de emisión, tipo de
// documento) son los de la sucursal, tal como figuran en la constancia CAI.
type RegisterAuthorizationRequest struct {
	BranchID          string    `json:"branch_id"`
	DocumentType      string    `json:"document_type,omitempty"` // FACTURA por defecto
	CAI               string    `json:"cai"`
	RangeStart        string    `json:"range_start"` // "000-001-01-00000001" o "1"
	RangeEnd          string    `json:"range_end"`
	EstablishmentCode string    `json:"establishment_code"`
	EmissionPointCode string    `json:"emission_point_code"`
	DocumentTypeCode  string    `json:"document_type_code"`
	AuthorizationDate time.Time `json:"authorization_date"`
	ExpirationDate    time.Time `json:"expiration_date"`
}

// AuthorizationResponse CAI en respuestas, con remanente calculado.
type AuthorizationResponse struct {
	ID                string `json:"id"`
	BranchID          string `json:"branch_id"`
	DocumentType      string `json:"document_type"`
	CAI               string `json:"cai"`
	RangeStart        string `json:"range_start"`
	RangeEnd          string `json:"range_end"`
	TotalDocuments    int64  `json:"total_documents"`
	UsedDocuments     int64  `json:"used_documents"`
	Remaining         int64  `json:"remaining"`
	AuthorizationDate string `json:"authorization_date"`
	ExpirationDate    string `json:"expiration_date"`
	Status            string `json:"status"`
}

// IssueInvoiceRequest body para POST /api/invoices. El RTN y nombre del
// cliente son overrides opcionales sobre los datos guardados en la venta.
type IssueInvoiceRequest struct {
	SaleID       string `json:"sale_id"`
	DocumentType string `json:"document_type,omitempty"`
	CustomerRTN  string `json:"customer_rtn,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}

// VoidInvoiceRequest body para POST /api/invoices/:id/void.
type VoidInvoiceRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}

// InvoiceResponse factura emitida, con el snapshot del CAI.
type InvoiceResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	BranchID        string          `json:"branch_id"`
	SaleID          string          `json:"sale_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	CAI             string          `json:"cai"`
	CAIExpiration   string          `json:"cai_expiration"`
	AuthorizedRange string          `json:"authorized_range"`
	CustomerRTN     string          `json:"customer_rtn"`
	CustomerName    string          `json:"customer_name"`
	SubtotalExempt  decimal.Decimal `json:"subtotal_exempt"`
	SubtotalTaxed   decimal.Decimal `json:"subtotal_taxed"`
	Tax             decimal.Decimal `json:"tax"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	TotalInWords    string          `json:"total_in_words"`
	IssuedAt        string          `json:"issued_at"`
	IsVoided        bool            `json:"is_voided"`
	VoidReason      string          `json:"void_reason,omitempty"`
	VoidedAt        string          `json:"voided_at,omitempty"`
}

// InvoiceStatsResponse agregados de emisión sobre un rango de fechas.
type InvoiceStatsResponse struct {
	IssuedCount    int64           `json:"issued_count"`
	VoidedCount    int64           `json:"voided_count"`
	SubtotalExempt decimal.Decimal `json:"subtotal_exempt"`
	SubtotalTaxed  decimal.Decimal `json:"subtotal_taxed"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}
