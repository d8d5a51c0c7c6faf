package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Numeración fiscal y emisión.
	ErrNoActiveAuthorization = errors.New("no hay CAI activo para la sucursal y tipo de documento")
	ErrCorrelativeExhausted  = errors.New("correlativos agotados para el CAI activo")
	ErrCorrelativeContention = errors.New("contención persistente en el pool de correlativos")
	ErrPoolAlreadyGenerated  = errors.New("el pool de correlativos ya fue generado para este CAI")
	ErrAlreadyInvoiced       = errors.New("la venta ya tiene una factura vigente")
	ErrAlreadyVoided         = errors.New("la factura ya está anulada")
	ErrInvalidVoidReason     = errors.New("motivo de anulación inválido")
	ErrValidation            = errors.New("datos fiscales inválidos")
)
