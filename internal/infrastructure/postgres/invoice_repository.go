package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, company_id, branch_id, sale_id, correlative_id,
	invoice_number, cai, cai_expiration, authorized_range,
	customer_rtn, customer_name,
	subtotal_exempt, subtotal_taxed, tax, discount, total, total_in_words,
	issued_at, issued_by,
	is_voided, void_reason, void_notes, voided_at, voided_by,
	created_at, updated_at`

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	const q = `
		INSERT INTO invoices
			(id, company_id, branch_id, sale_id, correlative_id,
			 invoice_number, cai, cai_expiration, authorized_range,
			 customer_rtn, customer_name,
			 subtotal_exempt, subtotal_taxed, tax, discount, total, total_in_words,
			 issued_at, issued_by, is_voided, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, false, $20, $21)`
	_, err := r.q.Exec(ctx, q,
		inv.ID, inv.CompanyID, inv.BranchID, inv.SaleID, inv.CorrelativeID,
		inv.InvoiceNumber, inv.CAI, inv.CAIExpiration, inv.AuthorizedRange,
		inv.CustomerRTN, inv.CustomerName,
		inv.SubtotalExempt, inv.SubtotalTaxed, inv.Tax, inv.Discount, inv.Total, inv.TotalInWords,
		inv.IssuedAt, inv.IssuedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		// El índice parcial invoices_sale_active_ux (sale_id WHERE NOT
		// is_voided) cierra la carrera de dos emisiones concurrentes de la
		// misma venta: bajo READ COMMITTED ambas pasan la guardia de lectura
		// y asignan correlativos distintos, pero solo un insert compromete;
		// el perdedor revierte entera su transacción (el correlativo vuelve
		// a DISPONIBLE).
		if isUniqueViolationOn(err, "invoices_sale_active_ux") {
			return fmt.Errorf("insert invoice: %w", domain.ErrAlreadyInvoiced)
		}
		if isUniqueViolation(err) {
			// invoice_number y correlative_id llevan unique: última línea de
			// defensa del invariante de no-duplicación, tras el bloqueo de fila.
			return fmt.Errorf("número de factura ya emitido: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by id: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) GetActiveBySaleID(ctx context.Context, saleID string) (*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE sale_id = $1 AND is_voided = false
		LIMIT 1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, q, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active invoice by sale: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) ListByDateRange(ctx context.Context, companyID string, from, to time.Time) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE company_id = $1 AND issued_at >= $2 AND issued_at <= $3
		ORDER BY issued_at ASC`
	return r.list(ctx, q, companyID, from, to)
}

func (r *InvoiceRepo) ListByRTN(ctx context.Context, companyID, rtn string, from, to time.Time) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE company_id = $1 AND customer_rtn = $2
		  AND issued_at >= $3 AND issued_at <= $4
		ORDER BY issued_at ASC`
	return r.list(ctx, q, companyID, rtn, from, to)
}

func (r *InvoiceRepo) list(ctx context.Context, q string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// MarkVoided solo escribe los campos de anulación; el WHERE exige que la
// factura siga vigente (is_voided = false es un invariante de un solo sentido).
func (r *InvoiceRepo) MarkVoided(ctx context.Context, inv *entity.Invoice) error {
	const q = `
		UPDATE invoices
		SET is_voided = true, void_reason = $2, void_notes = $3,
		    voided_at = $4, voided_by = $5, updated_at = $6
		WHERE id = $1 AND is_voided = false`
	tag, err := r.q.Exec(ctx, q,
		inv.ID, inv.VoidReason, nullIfEmpty(inv.VoidNotes),
		inv.VoidedAt, inv.VoidedBy, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("mark invoice voided: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark invoice voided: la factura %s ya está anulada o no existe", inv.ID)
	}
	return nil
}

func (r *InvoiceRepo) CreateVoidAudit(ctx context.Context, audit *entity.VoidAudit) error {
	const q = `
		INSERT INTO invoice_void_audits
			(id, invoice_id, correlative_id, reason, notes, voided_by, voided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, q,
		audit.ID, audit.InvoiceID, audit.CorrelativeID,
		audit.Reason, nullIfEmpty(audit.Notes), audit.VoidedBy, audit.VoidedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice_void_audit: %w", err)
	}
	return nil
}

// Stats agrega en una pasada; las sumas excluyen facturas anuladas.
func (r *InvoiceRepo) Stats(ctx context.Context, companyID string, from, to time.Time) (*repository.InvoiceStats, error) {
	const q = `
		SELECT
			count(*) FILTER (WHERE NOT is_voided),
			count(*) FILTER (WHERE is_voided),
			COALESCE(sum(subtotal_exempt) FILTER (WHERE NOT is_voided), 0),
			COALESCE(sum(subtotal_taxed)  FILTER (WHERE NOT is_voided), 0),
			COALESCE(sum(tax)             FILTER (WHERE NOT is_voided), 0),
			COALESCE(sum(total)           FILTER (WHERE NOT is_voided), 0)
		FROM invoices
		WHERE company_id = $1 AND issued_at >= $2 AND issued_at <= $3`
	stats := &repository.InvoiceStats{
		SubtotalExempt: decimal.Zero,
		SubtotalTaxed:  decimal.Zero,
		Tax:            decimal.Zero,
		Total:          decimal.Zero,
	}
	err := r.q.QueryRow(ctx, q, companyID, from, to).Scan(
		&stats.IssuedCount, &stats.VoidedCount,
		&stats.SubtotalExempt, &stats.SubtotalTaxed, &stats.Tax, &stats.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("invoice stats: %w", err)
	}
	return stats, nil
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var voidReason, voidNotes, voidedBy *string
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.BranchID, &inv.SaleID, &inv.CorrelativeID,
		&inv.InvoiceNumber, &inv.CAI, &inv.CAIExpiration, &inv.AuthorizedRange,
		&inv.CustomerRTN, &inv.CustomerName,
		&inv.SubtotalExempt, &inv.SubtotalTaxed, &inv.Tax, &inv.Discount,
		&inv.Total, &inv.TotalInWords,
		&inv.IssuedAt, &inv.IssuedBy,
		&inv.IsVoided, &voidReason, &voidNotes, &inv.VoidedAt, &voidedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if voidReason != nil {
		inv.VoidReason = *voidReason
	}
	if voidNotes != nil {
		inv.VoidNotes = *voidNotes
	}
	if voidedBy != nil {
		inv.VoidedBy = *voidedBy
	}
	return &inv, nil
}
