package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/billing"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// Ensure TxRunner implements numbering.TxRunner and billing.TxRunner.
var _ numbering.TxRunner = (*TxRunner)(nil)
var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Los
// bloqueos de fila tomados por los repos (FOR UPDATE del asignador) se
// sostienen hasta el Commit o Rollback de esta transacción.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunNumbering inicia una transacción con los repos de numeración (asignación
// directa de correlativos, sin factura).
func (r *TxRunner) RunNumbering(ctx context.Context, fn func(
	authRepo repository.AuthorizationRepository,
	corrRepo repository.CorrelativeRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewAuthorizationRepository(tx), NewCorrelativeRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunBilling inicia una transacción con los repos de numeración y facturación
// (para emitir y anular facturas de forma atómica con el correlativo).
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	authRepo repository.AuthorizationRepository,
	corrRepo repository.CorrelativeRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewAuthorizationRepository(tx), NewCorrelativeRepository(tx), NewInvoiceRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
