package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

var _ repository.AuthorizationRepository = (*authorizationRepo)(nil)
var _ repository.CorrelativeRepository = (*correlativeRepo)(nil)
var _ repository.InvoiceRepository = (*invoiceRepo)(nil)
var _ repository.SaleRepository = (*saleRepo)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Autorizaciones (CAI)
// ─────────────────────────────────────────────────────────────────────────────

type authorizationRepo struct {
	s *Store
}

func (r *authorizationRepo) Create(ctx context.Context, auth *entity.Authorization) error {
	for _, existing := range r.s.authorizations {
		if existing.CompanyID == auth.CompanyID && existing.CAI == auth.CAI {
			return fmt.Errorf("crear autorización: CAI duplicado: %w", domain.ErrDuplicate)
		}
	}
	r.s.authorizations[auth.ID] = *auth
	return nil
}

func (r *authorizationRepo) GetByID(ctx context.Context, id string) (*entity.Authorization, error) {
	a, ok := r.s.authorizations[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *authorizationRepo) FindActive(ctx context.Context, companyID, branchID, documentType string, now time.Time) (*entity.Authorization, error) {
	var candidates []entity.Authorization
	for _, a := range r.s.authorizations {
		if a.CompanyID == companyID && a.BranchID == branchID && a.DocumentType == documentType &&
			a.Status == entity.AuthorizationStatusActive && !a.ExpirationDate.Before(now) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].ExpirationDate.Equal(candidates[j].ExpirationDate) {
			return candidates[i].ExpirationDate.Before(candidates[j].ExpirationDate)
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return &candidates[0], nil
}

func (r *authorizationRepo) HasDepleted(ctx context.Context, companyID, branchID, documentType string) (bool, error) {
	for _, a := range r.s.authorizations {
		if a.CompanyID == companyID && a.BranchID == branchID && a.DocumentType == documentType &&
			a.Status == entity.AuthorizationStatusDepleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *authorizationRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Authorization, error) {
	var out []*entity.Authorization
	for _, a := range r.s.authorizations {
		if a.CompanyID == companyID {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *authorizationRepo) IncrementUsed(ctx context.Context, id string) error {
	a, ok := r.s.authorizations[id]
	if !ok {
		return fmt.Errorf("incrementar usados: %w", domain.ErrNotFound)
	}
	if a.UsedDocuments >= a.TotalDocuments {
		return fmt.Errorf("incrementar usados: contador en el tope: %w", domain.ErrConflict)
	}
	a.UsedDocuments++
	a.UpdatedAt = time.Now()
	r.s.authorizations[id] = a
	return nil
}

func (r *authorizationRepo) SetTotalDocuments(ctx context.Context, id string, total int64) error {
	a, ok := r.s.authorizations[id]
	if !ok {
		return fmt.Errorf("fijar total: %w", domain.ErrNotFound)
	}
	a.TotalDocuments = total
	a.UpdatedAt = time.Now()
	r.s.authorizations[id] = a
	return nil
}

func (r *authorizationRepo) MarkDepleted(ctx context.Context, id string) error {
	a, ok := r.s.authorizations[id]
	if !ok {
		return fmt.Errorf("marcar agotada: %w", domain.ErrNotFound)
	}
	if a.Status == entity.AuthorizationStatusDepleted {
		return nil
	}
	a.Status = entity.AuthorizationStatusDepleted
	a.UpdatedAt = time.Now()
	r.s.authorizations[id] = a
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Correlativos
// ─────────────────────────────────────────────────────────────────────────────

type correlativeRepo struct {
	s *Store
}

func (r *correlativeRepo) CreateBatch(ctx context.Context, batch []*entity.Correlative) error {
	for _, c := range batch {
		r.s.correlatives[c.ID] = *c
	}
	return nil
}

func (r *correlativeRepo) GetByID(ctx context.Context, id string) (*entity.Correlative, error) {
	c, ok := r.s.correlatives[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *correlativeRepo) CountByAuthorization(ctx context.Context, authorizationID string) (int64, error) {
	var n int64
	for _, c := range r.s.correlatives {
		if c.AuthorizationID == authorizationID {
			n++
		}
	}
	return n, nil
}

func (r *correlativeRepo) CountAvailable(ctx context.Context, authorizationID string) (int64, error) {
	return int64(len(r.s.sortedAvailable(authorizationID))), nil
}

// LockNextAvailable no necesita bloqueo por fila: las transacciones del Store
// están serializadas por el mutex, así que el que llega primero consume primero.
func (r *correlativeRepo) LockNextAvailable(ctx context.Context, authorizationID string) (*entity.Correlative, error) {
	avail := r.s.sortedAvailable(authorizationID)
	if len(avail) == 0 {
		return nil, nil
	}
	c := avail[0]
	return &c, nil
}

func (r *correlativeRepo) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	c, ok := r.s.correlatives[id]
	if !ok {
		return fmt.Errorf("marcar usado: %w", domain.ErrNotFound)
	}
	if c.Status != entity.CorrelativeStatusAvailable {
		return fmt.Errorf("marcar usado: correlativo en estado %s: %w", c.Status, domain.ErrConflict)
	}
	c.Status = entity.CorrelativeStatusUsed
	c.UsedAt = timePtr(usedAt)
	r.s.correlatives[id] = c
	return nil
}

func (r *correlativeRepo) MarkVoided(ctx context.Context, id string, voidedAt time.Time) error {
	c, ok := r.s.correlatives[id]
	if !ok {
		return fmt.Errorf("marcar anulado: %w", domain.ErrNotFound)
	}
	if c.Status != entity.CorrelativeStatusUsed {
		return fmt.Errorf("marcar anulado: correlativo en estado %s: %w", c.Status, domain.ErrConflict)
	}
	c.Status = entity.CorrelativeStatusVoided
	c.VoidedAt = timePtr(voidedAt)
	r.s.correlatives[id] = c
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Facturas
// ─────────────────────────────────────────────────────────────────────────────

type invoiceRepo struct {
	s *Store
}

func (r *invoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	for _, existing := range r.s.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return fmt.Errorf("crear factura: número de factura ya emitido: %w", domain.ErrDuplicate)
		}
		// Mismo contrato que el índice parcial invoices_sale_active_ux:
		// a lo sumo una factura vigente por venta.
		if existing.SaleID == inv.SaleID && !existing.IsVoided {
			return fmt.Errorf("crear factura: %w", domain.ErrAlreadyInvoiced)
		}
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *invoiceRepo) GetActiveBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error) {
	for _, inv := range r.s.invoices {
		if inv.SaleID == saleID && !inv.IsVoided {
			inv := inv
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *invoiceRepo) ListByDateRange(ctx context.Context, companyID string, from, to time.Time) ([]*entity.Invoice, error) {
	return r.list(companyID, "", from, to), nil
}

func (r *invoiceRepo) ListByRTN(ctx context.Context, companyID, rtn string, from, to time.Time) ([]*entity.Invoice, error) {
	return r.list(companyID, rtn, from, to), nil
}

func (r *invoiceRepo) list(companyID, rtn string, from, to time.Time) []*entity.Invoice {
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.CompanyID != companyID {
			continue
		}
		if inv.IssuedAt.Before(from) || inv.IssuedAt.After(to) {
			continue
		}
		if rtn != "" && inv.CustomerRTN != rtn {
			continue
		}
		inv := inv
		out = append(out, &inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out
}

func (r *invoiceRepo) MarkVoided(ctx context.Context, inv *entity.Invoice) error {
	stored, ok := r.s.invoices[inv.ID]
	if !ok {
		return fmt.Errorf("anular factura: %w", domain.ErrNotFound)
	}
	if stored.IsVoided {
		return fmt.Errorf("anular factura: ya anulada: %w", domain.ErrConflict)
	}
	stored.IsVoided = true
	stored.VoidReason = inv.VoidReason
	stored.VoidNotes = inv.VoidNotes
	stored.VoidedAt = inv.VoidedAt
	stored.VoidedBy = inv.VoidedBy
	stored.UpdatedAt = time.Now()
	r.s.invoices[inv.ID] = stored
	return nil
}

func (r *invoiceRepo) CreateVoidAudit(ctx context.Context, audit *entity.VoidAudit) error {
	r.s.audits = append(r.s.audits, *audit)
	return nil
}

func (r *invoiceRepo) Stats(ctx context.Context, companyID string, from, to time.Time) (*repository.InvoiceStats, error) {
	stats := &repository.InvoiceStats{
		SubtotalExempt: decimal.Zero,
		SubtotalTaxed:  decimal.Zero,
		Tax:            decimal.Zero,
		Total:          decimal.Zero,
	}
	for _, inv := range r.s.invoices {
		if inv.CompanyID != companyID || inv.IssuedAt.Before(from) || inv.IssuedAt.After(to) {
			continue
		}
		if inv.IsVoided {
			stats.VoidedCount++
			continue
		}
		stats.IssuedCount++
		stats.SubtotalExempt = stats.SubtotalExempt.Add(inv.SubtotalExempt)
		stats.SubtotalTaxed = stats.SubtotalTaxed.Add(inv.SubtotalTaxed)
		stats.Tax = stats.Tax.Add(inv.Tax)
		stats.Total = stats.Total.Add(inv.Total)
	}
	return stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Ventas (solo lectura)
// ─────────────────────────────────────────────────────────────────────────────

type saleRepo struct {
	s *Store
}

func (r *saleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return &sale, nil
}
