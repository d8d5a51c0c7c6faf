package repository

import (
	"context"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
)

// SaleRepository es el puerto de solo lectura hacia las ventas del POS.
// Este módulo nunca escribe ventas; solo necesita sus totales, líneas y
// datos de cliente para emitir la factura.
type SaleRepository interface {
	// GetByID devuelve la venta con sus líneas; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
}
