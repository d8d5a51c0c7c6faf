package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// DefaultAlertThreshold es el umbral de alerta de bajo suministro si la
// instalación no configura otro.
const DefaultAlertThreshold = 10

// AllocateNextInTx asigna el siguiente correlativo disponible para la sucursal
// y tipo de documento, usando los repositorios del caller (misma transacción).
// Es el único punto del sistema donde un correlativo sale de DISPONIBLE:
//
//  1. Resuelve el CAI activo (determinista: fecha límite más próxima).
//  2. Bloquea el correlativo DISPONIBLE de menor número; el bloqueo se
//     sostiene hasta el commit, así un asignador concurrente espera y luego
//     avanza al siguiente número, nunca al mismo.
//  3. Lo marca USADO e incrementa el contador del CAI.
//  4. Si el remanente quedó en o bajo el umbral, emite la señal de bajo
//     suministro; si quedó en cero, marca el CAI como AGOTADA.
//
// Cualquier error del caller después de esta llamada revierte también la
// asignación: no se queman números en emisiones fallidas.
func AllocateNextInTx(
	ctx context.Context,
	authRepo repository.AuthorizationRepository,
	corrRepo repository.CorrelativeRepository,
	companyID, branchID, documentType string,
	threshold int64,
	notifier LowSupplyNotifier,
	now time.Time,
) (*entity.Correlative, *entity.Authorization, error) {
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}

	auth, err := authRepo.FindActive(ctx, companyID, branchID, documentType, now)
	if err != nil {
		return nil, nil, fmt.Errorf("buscar CAI activo: %w", err)
	}
	if auth == nil {
		// Sin CAI activo: si lo que hay es uno AGOTADA, el caller necesita
		// saber que el pool se drenó (registrar un CAI nuevo es acción del
		// operador, no un reintento).
		depleted, err := authRepo.HasDepleted(ctx, companyID, branchID, documentType)
		if err != nil {
			return nil, nil, fmt.Errorf("verificar CAI agotado: %w", err)
		}
		if depleted {
			return nil, nil, domain.ErrCorrelativeExhausted
		}
		return nil, nil, domain.ErrNoActiveAuthorization
	}

	corr, err := corrRepo.LockNextAvailable(ctx, auth.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("bloquear correlativo: %w", err)
	}
	if corr == nil {
		// El pool se drenó con el CAI aún activo (otro asignador pudo ganarle
		// a la búsqueda). La marca AGOTADA no puede asentarse aquí: esta
		// transacción se revierte con el error; el caller la asienta en una
		// transacción aparte usando el CAI devuelto.
		return nil, auth, domain.ErrCorrelativeExhausted
	}

	if err := corrRepo.MarkUsed(ctx, corr.ID, now); err != nil {
		return nil, nil, fmt.Errorf("marcar correlativo usado: %w", err)
	}
	corr.Status = entity.CorrelativeStatusUsed
	usedAt := now
	corr.UsedAt = &usedAt

	if err := authRepo.IncrementUsed(ctx, auth.ID); err != nil {
		return nil, nil, fmt.Errorf("incrementar contador del CAI: %w", err)
	}
	auth.UsedDocuments++

	remaining, err := corrRepo.CountAvailable(ctx, auth.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("contar correlativos disponibles: %w", err)
	}
	if remaining <= threshold && notifier != nil {
		notifier.NotifyLowSupply(ctx, auth, remaining)
	}
	if remaining == 0 {
		if err := authRepo.MarkDepleted(ctx, auth.ID); err != nil {
			return nil, nil, fmt.Errorf("marcar CAI agotado: %w", err)
		}
		auth.Status = entity.AuthorizationStatusDepleted
	}
	return corr, auth, nil
}

// Allocator asigna correlativos en transacción propia. El emisor de facturas
// no lo usa (corre la asignación dentro de su transacción de emisión); existe
// para otros documentos fiscales que solo necesitan el número.
type Allocator struct {
	txRunner  TxRunner
	notifier  LowSupplyNotifier
	threshold int64
	nowFn     func() time.Time
}

// NewAllocator construye el asignador.
func NewAllocator(txRunner TxRunner, notifier LowSupplyNotifier, threshold int64) *Allocator {
	return &Allocator{
		txRunner:  txRunner,
		notifier:  notifier,
		threshold: threshold,
		nowFn:     time.Now,
	}
}

// AllocateNext asigna y confirma el siguiente correlativo para la sucursal y
// tipo de documento. El correlativo devuelto ya está consumido (USADO).
func (a *Allocator) AllocateNext(ctx context.Context, companyID, branchID, documentType string) (*entity.Correlative, error) {
	var (
		corr *entity.Correlative
		auth *entity.Authorization
	)
	err := a.txRunner.RunNumbering(ctx, func(
		authRepo repository.AuthorizationRepository,
		corrRepo repository.CorrelativeRepository,
	) error {
		var err error
		corr, auth, err = AllocateNextInTx(ctx, authRepo, corrRepo,
			companyID, branchID, documentType, a.threshold, a.notifier, a.nowFn())
		return err
	})
	if err != nil {
		MarkDepletedAfterRollback(ctx, a.txRunner, err, auth)
		return nil, err
	}
	return corr, nil
}

// MarkDepletedAfterRollback asienta la marca AGOTADA en transacción propia
// cuando una asignación falló por pool drenado: la transacción original se
// revirtió entera, pero el agotamiento debe quedar visible para que las
// siguientes asignaciones lo reporten sin recorrer el pool. Es mejor esfuerzo:
// el error original ya describe la falla.
func MarkDepletedAfterRollback(ctx context.Context, txRunner TxRunner, err error, auth *entity.Authorization) {
	if auth == nil || !errors.Is(err, domain.ErrCorrelativeExhausted) {
		return
	}
	_ = txRunner.RunNumbering(ctx, func(
		authRepo repository.AuthorizationRepository,
		_ repository.CorrelativeRepository,
	) error {
		return authRepo.MarkDepleted(ctx, auth.ID)
	})
}
