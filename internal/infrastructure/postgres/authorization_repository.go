package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

var _ repository.AuthorizationRepository = (*AuthorizationRepo)(nil)

// AuthorizationRepo implementa AuthorizationRepository sobre PostgreSQL
// (usable con pool o tx).
type AuthorizationRepo struct {
	q Querier
}

// NewAuthorizationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuthorizationRepository(q Querier) *AuthorizationRepo {
	return &AuthorizationRepo{q: q}
}

const authorizationColumns = `
	id, company_id, branch_id, document_type, cai, range_start, range_end,
	establishment_code, emission_point_code, document_type_code,
	total_documents, used_documents, authorization_date, expiration_date,
	status, created_at, updated_at`

func (r *AuthorizationRepo) Create(ctx context.Context, auth *entity.Authorization) error {
	const q = `
		INSERT INTO fiscal_authorizations
			(id, company_id, branch_id, document_type, cai, range_start, range_end,
			 establishment_code, emission_point_code, document_type_code,
			 total_documents, used_documents, authorization_date, expiration_date,
			 status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())`
	_, err := r.q.Exec(ctx, q,
		auth.ID, auth.CompanyID, auth.BranchID, auth.DocumentType, auth.CAI,
		auth.RangeStart, auth.RangeEnd,
		auth.EstablishmentCode, auth.EmissionPointCode, auth.DocumentTypeCode,
		auth.TotalDocuments, auth.UsedDocuments,
		auth.AuthorizationDate, auth.ExpirationDate, auth.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("CAI duplicado: %w", err)
		}
		return fmt.Errorf("insert fiscal_authorization: %w", err)
	}
	return nil
}

func (r *AuthorizationRepo) GetByID(ctx context.Context, id string) (*entity.Authorization, error) {
	q := `SELECT ` + authorizationColumns + ` FROM fiscal_authorizations WHERE id = $1`
	auth, err := scanAuthorization(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal_authorization by id: %w", err)
	}
	return auth, nil
}

// FindActive es la consulta crítica del asignador. El orden es determinista:
// con más de un CAI nominalmente activo gana el de fecha límite más próxima.
func (r *AuthorizationRepo) FindActive(ctx context.Context, companyID, branchID, documentType string, now time.Time) (*entity.Authorization, error) {
	q := `SELECT ` + authorizationColumns + `
		FROM fiscal_authorizations
		WHERE company_id    = $1
		  AND branch_id     = $2
		  AND document_type = $3
		  AND status        = $4
		  AND expiration_date >= $5
		ORDER BY expiration_date ASC, created_at ASC
		LIMIT 1`
	auth, err := scanAuthorization(r.q.QueryRow(ctx, q,
		companyID, branchID, documentType, entity.AuthorizationStatusActive, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active fiscal_authorization: %w", err)
	}
	return auth, nil
}

func (r *AuthorizationRepo) HasDepleted(ctx context.Context, companyID, branchID, documentType string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM fiscal_authorizations
			WHERE company_id = $1 AND branch_id = $2 AND document_type = $3 AND status = $4
		)`
	var exists bool
	err := r.q.QueryRow(ctx, q, companyID, branchID, documentType, entity.AuthorizationStatusDepleted).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check depleted fiscal_authorization: %w", err)
	}
	return exists, nil
}

func (r *AuthorizationRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Authorization, error) {
	q := `SELECT ` + authorizationColumns + `
		FROM fiscal_authorizations
		WHERE company_id = $1
		ORDER BY authorization_date DESC`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("list fiscal_authorizations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Authorization
	for rows.Next() {
		auth, err := scanAuthorization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal_authorization: %w", err)
		}
		list = append(list, auth)
	}
	return list, rows.Err()
}

// IncrementUsed incrementa el contador en la misma transacción en la que se
// asignó el correlativo; la fila del CAI linealiza el contador con el pool.
func (r *AuthorizationRepo) IncrementUsed(ctx context.Context, id string) error {
	const q = `
		UPDATE fiscal_authorizations
		SET used_documents = used_documents + 1, updated_at = now()
		WHERE id = $1 AND used_documents < total_documents`
	tag, err := r.q.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("increment used_documents: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment used_documents: contador en tope o CAI inexistente (%s)", id)
	}
	return nil
}

func (r *AuthorizationRepo) SetTotalDocuments(ctx context.Context, id string, total int64) error {
	const q = `
		UPDATE fiscal_authorizations
		SET total_documents = $2, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, q, id, total)
	if err != nil {
		return fmt.Errorf("set total_documents: %w", err)
	}
	return nil
}

// MarkDepleted es idempotente: el WHERE excluye la transición si ya ocurrió.
func (r *AuthorizationRepo) MarkDepleted(ctx context.Context, id string) error {
	const q = `
		UPDATE fiscal_authorizations
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status <> $2`
	_, err := r.q.Exec(ctx, q, id, entity.AuthorizationStatusDepleted)
	if err != nil {
		return fmt.Errorf("mark fiscal_authorization depleted: %w", err)
	}
	return nil
}

func scanAuthorization(row pgxScanner) (*entity.Authorization, error) {
	var a entity.Authorization
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.BranchID, &a.DocumentType, &a.CAI,
		&a.RangeStart, &a.RangeEnd,
		&a.EstablishmentCode, &a.EmissionPointCode, &a.DocumentTypeCode,
		&a.TotalDocuments, &a.UsedDocuments,
		&a.AuthorizationDate, &a.ExpirationDate,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
