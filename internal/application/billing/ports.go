package billing

import (
	"context"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de
// numeración y facturación atados a ella. La asignación del correlativo y la
// persistencia de la factura comparten esta transacción: si cualquiera falla,
// ambas se revierten (ningún correlativo queda USADO sin factura ni viceversa).
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		authRepo repository.AuthorizationRepository,
		corrRepo repository.CorrelativeRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// IssueNotifier recibe el evento de emisión para los colaboradores de
// notificación y auditoría. Se invoca después del commit.
type IssueNotifier interface {
	NotifyIssued(ctx context.Context, inv *entity.Invoice)
}
