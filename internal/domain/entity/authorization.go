package entity

import "time"

// Estados de una autorización CAI. Los estados distintos de ACTIVA son terminales
// para efectos de asignación: las facturas ya emitidas siguen siendo válidas.
const (
	AuthorizationStatusActive   = "ACTIVA"
	AuthorizationStatusExpired  = "VENCIDA"
	AuthorizationStatusDepleted = "AGOTADA"
	AuthorizationStatusCanceled = "ANULADA"
)

// Tipos de documento fiscal que puede amparar un CAI.
const (
	DocumentTypeInvoice    = "FACTURA"
	DocumentTypeCreditNote = "NOTA_CREDITO"
	DocumentTypeDebitNote  = "NOTA_DEBITO"
)

// Authorization representa un CAI: la autorización de numeración emitida por el SAR
// para una sucursal y un tipo de documento, con un rango correlativo y fecha límite.
// Cada empresa puede tener varias; solo una activa por sucursal y tipo de documento.
type Authorization struct {
	ID         string
	CompanyID  string
	BranchID   string
	DocumentType string

	CAI        string // Código de autorización (ej: "254F8-612F1-8A0E0-6E8B3-0099B9-36")
	RangeStart string // Primer número autorizado con formato (ej: "000-001-01-00000001")
	RangeEnd   string // Último número autorizado con formato (ej: "000-001-01-00005000")

	// Códigos de formato del número fiscal, capturados de la sucursal al registrar
	// el CAI. Se usan para materializar el número de cada correlativo.
	EstablishmentCode string // Establecimiento (3 dígitos)
	EmissionPointCode string // Punto de emisión (3 dígitos)
	DocumentTypeCode  string // Tipo de documento (2 dígitos)

	TotalDocuments int64 // Cantidad de correlativos del rango (fijado al generar el pool)
	UsedDocuments  int64 // Contador monótono de correlativos consumidos

	AuthorizationDate time.Time
	ExpirationDate    time.Time // Fecha límite de emisión; vencida no asigna aunque queden números
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Remaining devuelve la cantidad de correlativos aún disponibles según los contadores.
func (a *Authorization) Remaining() int64 {
	return a.TotalDocuments - a.UsedDocuments
}

// IsUsable indica si la autorización puede asignar números en la fecha dada.
func (a *Authorization) IsUsable(now time.Time) bool {
	return a.Status == AuthorizationStatusActive && !now.After(a.ExpirationDate)
}

// RangeDescription arma la descripción legal del rango autorizado que se
// imprime en cada factura: "<inicio> al <fin>".
func (a *Authorization) RangeDescription() string {
	return a.RangeStart + " al " + a.RangeEnd
}
