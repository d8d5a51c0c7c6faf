package entity

import "time"

// VoidAudit es el registro de auditoría de una anulación: append-only, una fila
// por acción de anulación, nunca se actualiza ni se borra.
type VoidAudit struct {
	ID            string
	InvoiceID     string
	CorrelativeID string
	Reason        string
	Notes         string
	VoidedBy      string
	VoidedAt      time.Time
}
