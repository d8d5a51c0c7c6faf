package entity

import "time"

// Estados de un correlativo. La máquina de estados es estrictamente
// DISPONIBLE → USADO → ANULADO: un número nunca vuelve a ser asignable.
const (
	CorrelativeStatusAvailable = "DISPONIBLE"
	CorrelativeStatusUsed      = "USADO"
	CorrelativeStatusVoided    = "ANULADO"
)

// Correlative es un número individual dentro del rango de un CAI, la unidad
// atómica de asignación. Se crea en bloque al generar el pool y nunca se borra
// (pista de auditoría).
type Correlative struct {
	ID              string
	AuthorizationID string
	SequenceNumber  int64  // Único dentro de la autorización, contiguo sobre el rango
	FormattedNumber string // Representación fiscal (ej: "000-001-01-00000123")
	Status          string
	UsedAt          *time.Time
	VoidedAt        *time.Time
	CreatedAt       time.Time
}
