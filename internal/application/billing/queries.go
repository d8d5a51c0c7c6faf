package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/dto"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// InvoiceQueryUseCase expone las consultas de facturas para colaboradores:
// por venta, por rango de fechas, por RTN (reportes al SAR) y agregados.
type InvoiceQueryUseCase struct {
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceQueryUseCase construye el caso de uso.
func NewInvoiceQueryUseCase(invoiceRepo repository.InvoiceRepository) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{invoiceRepo: invoiceRepo}
}

// GetByID devuelve la factura si pertenece a la empresa.
func (uc *InvoiceQueryUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("leer factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toInvoiceResponse(inv), nil
}

// GetBySaleID devuelve la factura vigente (no anulada) de una venta.
func (uc *InvoiceQueryUseCase) GetBySaleID(ctx context.Context, companyID, saleID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetActiveBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("leer factura de la venta: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toInvoiceResponse(inv), nil
}

// List devuelve las facturas de la empresa en el rango de fechas; con rtn no
// vacío filtra además por el RTN del cliente.
func (uc *InvoiceQueryUseCase) List(ctx context.Context, companyID, rtn string, from, to time.Time) ([]*dto.InvoiceResponse, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	var (
		invoices []*entity.Invoice
		err      error
	)
	if rtn != "" {
		invoices, err = uc.invoiceRepo.ListByRTN(ctx, companyID, rtn, from, to)
	} else {
		invoices, err = uc.invoiceRepo.ListByDateRange(ctx, companyID, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return out, nil
}

// Stats devuelve los agregados de emisión del rango (conteos y sumas).
func (uc *InvoiceQueryUseCase) Stats(ctx context.Context, companyID string, from, to time.Time) (*dto.InvoiceStatsResponse, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	stats, err := uc.invoiceRepo.Stats(ctx, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("agregados de facturación: %w", err)
	}
	return &dto.InvoiceStatsResponse{
		IssuedCount:    stats.IssuedCount,
		VoidedCount:    stats.VoidedCount,
		SubtotalExempt: stats.SubtotalExempt,
		SubtotalTaxed:  stats.SubtotalTaxed,
		Tax:            stats.Tax,
		Total:          stats.Total,
	}, nil
}
