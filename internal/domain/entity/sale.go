package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale es la venta ya cerrada por el flujo de caja. Este módulo solo la lee:
// los totales vienen calculados por el POS y aquí únicamente se necesita la
// sucursal, las líneas (para partir gravado/exento) y los datos del cliente.
type Sale struct {
	ID           string
	CompanyID    string
	BranchID     string
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	TaxRate      decimal.Decimal // Tasa ISV de la venta (ej: 0.15); aplica solo a la porción gravada
	CustomerRTN  string          // Vacío para consumidor final
	CustomerName string
	Items        []SaleItem
	CreatedAt    time.Time
}

// SaleItem es una línea de venta con su clasificación fiscal de producto.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	TaxExempt bool // Clasificación fiscal del producto: exento de ISV
}
