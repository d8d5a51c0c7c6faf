package numbering

import (
	"context"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de
// numeración atados a ella. El bloqueo de filas tomado adentro se sostiene
// hasta el commit o rollback.
type TxRunner interface {
	RunNumbering(ctx context.Context, fn func(
		authRepo repository.AuthorizationRepository,
		corrRepo repository.CorrelativeRepository,
	) error) error
}

// LowSupplyNotifier recibe la señal de bajo suministro de correlativos.
// Se emite en cada asignación mientras el remanente siga en o bajo el umbral
// (no solo al cruzarlo); deduplicar o acumular es responsabilidad de la
// implementación, no del asignador. La notificación ocurre dentro de la
// transacción de asignación, por lo que la implementación debe ser liviana.
type LowSupplyNotifier interface {
	NotifyLowSupply(ctx context.Context, auth *entity.Authorization, remaining int64)
}
