package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

var _ repository.CorrelativeRepository = (*CorrelativeRepo)(nil)

// CorrelativeRepo implementa CorrelativeRepository sobre PostgreSQL
// (usable con pool o tx; LockNextAvailable exige tx).
type CorrelativeRepo struct {
	q Querier
}

// NewCorrelativeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCorrelativeRepository(q Querier) *CorrelativeRepo {
	return &CorrelativeRepo{q: q}
}

const correlativeColumns = `
	id, authorization_id, sequence_number, formatted_number, status,
	used_at, voided_at, created_at`

// CreateBatch inserta un lote del pool con un solo INSERT (arrays + unnest):
// una ida a la base por lote, no por fila.
func (r *CorrelativeRepo) CreateBatch(ctx context.Context, batch []*entity.Correlative) error {
	if len(batch) == 0 {
		return nil
	}
	ids := make([]string, len(batch))
	authIDs := make([]string, len(batch))
	seqs := make([]int64, len(batch))
	numbers := make([]string, len(batch))
	statuses := make([]string, len(batch))
	createdAts := make([]time.Time, len(batch))
	for i, c := range batch {
		ids[i] = c.ID
		authIDs[i] = c.AuthorizationID
		seqs[i] = c.SequenceNumber
		numbers[i] = c.FormattedNumber
		statuses[i] = c.Status
		createdAts[i] = c.CreatedAt
	}
	const q = `
		INSERT INTO fiscal_correlatives
			(id, authorization_id, sequence_number, formatted_number, status, created_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::bigint[], $4::text[], $5::text[], $6::timestamptz[])`
	_, err := r.q.Exec(ctx, q, ids, authIDs, seqs, numbers, statuses, createdAts)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("correlativo duplicado en el lote: %w", err)
		}
		return fmt.Errorf("insert batch fiscal_correlatives: %w", err)
	}
	return nil
}

func (r *CorrelativeRepo) GetByID(ctx context.Context, id string) (*entity.Correlative, error) {
	q := `SELECT ` + correlativeColumns + ` FROM fiscal_correlatives WHERE id = $1`
	corr, err := scanCorrelative(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal_correlative by id: %w", err)
	}
	return corr, nil
}

func (r *CorrelativeRepo) CountByAuthorization(ctx context.Context, authorizationID string) (int64, error) {
	const q = `SELECT count(*) FROM fiscal_correlatives WHERE authorization_id = $1`
	var n int64
	if err := r.q.QueryRow(ctx, q, authorizationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fiscal_correlatives: %w", err)
	}
	return n, nil
}

func (r *CorrelativeRepo) CountAvailable(ctx context.Context, authorizationID string) (int64, error) {
	const q = `
		SELECT count(*) FROM fiscal_correlatives
		WHERE authorization_id = $1 AND status = $2`
	var n int64
	if err := r.q.QueryRow(ctx, q, authorizationID, entity.CorrelativeStatusAvailable).Scan(&n); err != nil {
		return 0, fmt.Errorf("count available fiscal_correlatives: %w", err)
	}
	return n, nil
}

// lockAttempts acota el número de reintentos de bloqueo bajo contención antes
// de rendirse (cada espera ya está acotada por lock_timeout del deployment).
const lockAttempts = 5

// LockNextAvailable toma el correlativo DISPONIBLE de menor número con
// bloqueo exclusivo de fila, sostenido hasta el commit de la transacción.
//
// Primero intenta FOR UPDATE SKIP LOCKED: si otro asignador tiene bloqueada
// la fila más baja, este toma la siguiente en vez de esperar. Si no hay fila
// libre, distingue agotamiento de contención con un recuento y, en el segundo
// caso, espera con FOR UPDATE sobre la fila disputada y reintenta (la espera
// puede devolver cero filas cuando la fila disputada se consumió: el recheck
// de visibilidad de READ COMMITTED la descarta y hay que volver a buscar).
func (r *CorrelativeRepo) LockNextAvailable(ctx context.Context, authorizationID string) (*entity.Correlative, error) {
	qSkip := `SELECT ` + correlativeColumns + `
		FROM fiscal_correlatives
		WHERE authorization_id = $1 AND status = $2
		ORDER BY sequence_number ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`
	qWait := `SELECT id
		FROM fiscal_correlatives
		WHERE authorization_id = $1 AND status = $2
		ORDER BY sequence_number ASC
		LIMIT 1
		FOR UPDATE`

	for attempt := 0; attempt < lockAttempts; attempt++ {
		corr, err := scanCorrelative(r.q.QueryRow(ctx, qSkip, authorizationID, entity.CorrelativeStatusAvailable))
		if err == nil {
			return corr, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lock next fiscal_correlative: %w", err)
		}

		// Sin fila libre: ¿pool agotado o todas bloqueadas por otros?
		remaining, err := r.CountAvailable(ctx, authorizationID)
		if err != nil {
			return nil, err
		}
		if remaining == 0 {
			return nil, nil
		}

		// Contención: esperar el commit del asignador que tiene la fila.
		var id string
		err = r.q.QueryRow(ctx, qWait, authorizationID, entity.CorrelativeStatusAvailable).Scan(&id)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			if isLockTimeout(err) {
				return nil, fmt.Errorf("%w: lock_timeout esperando la fila disputada", domain.ErrCorrelativeContention)
			}
			return nil, fmt.Errorf("wait for fiscal_correlative lock: %w", err)
		}
		if err == nil {
			// La espera nos dejó la fila bloqueada a nosotros; releerla.
			corr, err := scanCorrelative(r.q.QueryRow(ctx, `SELECT `+correlativeColumns+`
				FROM fiscal_correlatives WHERE id = $1`, id))
			if err != nil {
				return nil, fmt.Errorf("reread locked fiscal_correlative: %w", err)
			}
			return corr, nil
		}
	}
	// Reintento agotado con números aún disponibles: el caller puede volver a
	// intentar la operación completa (es contención, no un fallo interno).
	return nil, fmt.Errorf("%w: tras %d intentos", domain.ErrCorrelativeContention, lockAttempts)
}

// MarkUsed exige el estado origen en el WHERE: si la fila ya no está
// DISPONIBLE la transición no ocurre y se reporta conflicto.
func (r *CorrelativeRepo) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	const q = `
		UPDATE fiscal_correlatives
		SET status = $2, used_at = $3
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(ctx, q, id, entity.CorrelativeStatusUsed, usedAt, entity.CorrelativeStatusAvailable)
	if err != nil {
		return fmt.Errorf("mark fiscal_correlative used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark fiscal_correlative used: el correlativo %s ya no está disponible", id)
	}
	return nil
}

// MarkVoided solo acepta USADO como estado origen; ANULADO es terminal.
func (r *CorrelativeRepo) MarkVoided(ctx context.Context, id string, voidedAt time.Time) error {
	const q = `
		UPDATE fiscal_correlatives
		SET status = $2, voided_at = $3
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(ctx, q, id, entity.CorrelativeStatusVoided, voidedAt, entity.CorrelativeStatusUsed)
	if err != nil {
		return fmt.Errorf("mark fiscal_correlative voided: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark fiscal_correlative voided: el correlativo %s no está en estado USADO", id)
	}
	return nil
}

func scanCorrelative(row pgxScanner) (*entity.Correlative, error) {
	var c entity.Correlative
	err := row.Scan(
		&c.ID, &c.AuthorizationID, &c.SequenceNumber, &c.FormattedNumber,
		&c.Status, &c.UsedAt, &c.VoidedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
