package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/dto"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// VoidInvoiceUseCase anula una factura emitida. La anulación es irreversible:
// la factura queda marcada, su correlativo pasa a ANULADO (el número jamás se
// reutiliza) y se agrega el registro de auditoría, todo en una transacción.
type VoidInvoiceUseCase struct {
	txRunner TxRunner
	nowFn    func() time.Time
}

// NewVoidInvoiceUseCase construye el caso de uso.
func NewVoidInvoiceUseCase(txRunner TxRunner) *VoidInvoiceUseCase {
	return &VoidInvoiceUseCase{txRunner: txRunner, nowFn: time.Now}
}

// VoidInvoice anula la factura con el motivo y notas dados.
func (uc *VoidInvoiceUseCase) VoidInvoice(ctx context.Context, companyID, userID, invoiceID string, in dto.VoidInvoiceRequest) (*dto.InvoiceResponse, error) {
	if invoiceID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidVoidReason(in.Reason) {
		return nil, domain.ErrInvalidVoidReason
	}

	now := uc.nowFn()
	var inv *entity.Invoice
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.AuthorizationRepository,
		corrRepo repository.CorrelativeRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetByID(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("leer factura: %w", err)
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if inv.IsVoided {
			return domain.ErrAlreadyVoided
		}

		inv.IsVoided = true
		inv.VoidReason = in.Reason
		inv.VoidNotes = in.Notes
		inv.VoidedAt = &now
		inv.VoidedBy = userID
		inv.UpdatedAt = now
		if err := invoiceRepo.MarkVoided(ctx, inv); err != nil {
			return fmt.Errorf("marcar factura anulada: %w", err)
		}

		// USADO → ANULADO; el repositorio rechaza cualquier otro estado origen.
		if err := corrRepo.MarkVoided(ctx, inv.CorrelativeID, now); err != nil {
			return fmt.Errorf("anular correlativo: %w", err)
		}

		audit := &entity.VoidAudit{
			ID:            uuid.New().String(),
			InvoiceID:     inv.ID,
			CorrelativeID: inv.CorrelativeID,
			Reason:        in.Reason,
			Notes:         in.Notes,
			VoidedBy:      userID,
			VoidedAt:      now,
		}
		if err := invoiceRepo.CreateVoidAudit(ctx, audit); err != nil {
			return fmt.Errorf("guardar auditoría de anulación: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}
