package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo lee ventas del POS. Solo lectura: este módulo nunca escribe en las
// tablas de ventas.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	const q = `
		SELECT id, company_id, branch_id, subtotal, discount, total, tax_rate,
		       COALESCE(customer_rtn, ''), COALESCE(customer_name, ''), created_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.CompanyID, &s.BranchID,
		&s.Subtotal, &s.Discount, &s.Total, &s.TaxRate,
		&s.CustomerRTN, &s.CustomerName, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale by id: %w", err)
	}

	const qItems = `
		SELECT id, sale_id, product_id, quantity, unit_price, subtotal, tax_exempt
		FROM sale_items WHERE sale_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, qItems, id)
	if err != nil {
		return nil, fmt.Errorf("list sale_items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item entity.SaleItem
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.Subtotal, &item.TaxExempt,
		); err != nil {
			return nil, fmt.Errorf("scan sale_item: %w", err)
		}
		s.Items = append(s.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}
