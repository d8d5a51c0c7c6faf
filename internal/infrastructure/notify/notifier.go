// Package notify implementa los colaboradores de notificación del motor
// fiscal sobre el log estructurado. Es el punto de integración para canales
// externos (correo, websocket); hoy todos los eventos se publican al log.
package notify

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/billing"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/pkg/logger"
)

var _ numbering.LowSupplyNotifier = (*Notifier)(nil)
var _ billing.IssueNotifier = (*Notifier)(nil)

// Notifier publica los eventos fiscales al log estructurado. Los mensajes
// legibles van en español con separadores de miles locales (es-HN), porque son
// los que el operador del comercio termina viendo.
type Notifier struct {
	log     *logger.Logger
	printer *message.Printer
}

func New(log *logger.Logger) *Notifier {
	return &Notifier{
		log:     log,
		printer: message.NewPrinter(language.MustParse("es-HN")),
	}
}

// NotifyLowSupply se invoca dentro de la transacción de asignación: solo
// escribe al log, sin I/O adicional.
func (n *Notifier) NotifyLowSupply(ctx context.Context, auth *entity.Authorization, remaining int64) {
	n.log.Warn().
		Str("authorization_id", auth.ID).
		Str("cai", auth.CAI).
		Str("branch_id", auth.BranchID).
		Str("document_type", auth.DocumentType).
		Int64("remaining", remaining).
		Time("expiration_date", auth.ExpirationDate).
		Msg(n.printer.Sprintf("CAI por agotarse: quedan %d correlativos de %d", remaining, auth.TotalDocuments))
}

// NotifyIssued se invoca después del commit de la emisión.
func (n *Notifier) NotifyIssued(ctx context.Context, inv *entity.Invoice) {
	n.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("sale_id", inv.SaleID).
		Str("company_id", inv.CompanyID).
		Str("branch_id", inv.BranchID).
		Str("customer_rtn", inv.CustomerRTN).
		Str("total", inv.Total.StringFixed(2)).
		Msg("factura emitida")
}
