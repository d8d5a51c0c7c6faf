package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/dto"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/fiscal"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// RegisterAuthorizationUseCase registra un CAI recibido del SAR y genera su
// pool de correlativos (acción administrativa, una vez por autorización).
type RegisterAuthorizationUseCase struct {
	authRepo repository.AuthorizationRepository
	pool     *GeneratePoolUseCase
	seqWidth int
}

// NewRegisterAuthorizationUseCase construye el caso de uso. seqWidth <= 0 usa
// el ancho de correlativo por defecto.
func NewRegisterAuthorizationUseCase(
	authRepo repository.AuthorizationRepository,
	pool *GeneratePoolUseCase,
	seqWidth int,
) *RegisterAuthorizationUseCase {
	return &RegisterAuthorizationUseCase{authRepo: authRepo, pool: pool, seqWidth: seqWidth}
}

// Register valida los datos del CAI, lo persiste en estado ACTIVA y genera el
// pool completo de correlativos.
func (uc *RegisterAuthorizationUseCase) Register(ctx context.Context, companyID string, in dto.RegisterAuthorizationRequest) (*dto.AuthorizationResponse, error) {
	if companyID == "" || in.BranchID == "" {
		return nil, domain.ErrInvalidInput
	}
	cai := strings.TrimSpace(in.CAI)
	if cai == "" {
		return nil, fmt.Errorf("%w: CAI requerido", domain.ErrValidation)
	}
	docType := in.DocumentType
	if docType == "" {
		docType = entity.DocumentTypeInvoice
	}
	switch docType {
	case entity.DocumentTypeInvoice, entity.DocumentTypeCreditNote, entity.DocumentTypeDebitNote:
	default:
		return nil, fmt.Errorf("%w: tipo de documento desconocido %q", domain.ErrValidation, docType)
	}

	format := fiscal.NumberFormat{
		EstablishmentCode: in.EstablishmentCode,
		EmissionPointCode: in.EmissionPointCode,
		DocumentTypeCode:  in.DocumentTypeCode,
		SequenceWidth:     uc.seqWidth,
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	start, end, err := fiscal.ParseRange(in.RangeStart, in.RangeEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !in.ExpirationDate.After(in.AuthorizationDate) {
		return nil, fmt.Errorf("%w: la fecha límite debe ser posterior a la fecha de autorización", domain.ErrValidation)
	}

	// El rango se guarda siempre en su forma fiscal canónica, aunque el SAR lo
	// haya comunicado como número plano.
	rangeStart, err := format.Format(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	rangeEnd, err := format.Format(end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	auth := &entity.Authorization{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		BranchID:          in.BranchID,
		DocumentType:      docType,
		CAI:               cai,
		RangeStart:        rangeStart,
		RangeEnd:          rangeEnd,
		EstablishmentCode: in.EstablishmentCode,
		EmissionPointCode: in.EmissionPointCode,
		DocumentTypeCode:  in.DocumentTypeCode,
		AuthorizationDate: in.AuthorizationDate,
		ExpirationDate:    in.ExpirationDate,
		Status:            entity.AuthorizationStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.authRepo.Create(ctx, auth); err != nil {
		return nil, fmt.Errorf("crear CAI: %w", err)
	}

	total, err := uc.pool.Generate(ctx, auth.ID)
	if err != nil {
		return nil, err
	}
	auth.TotalDocuments = total

	resp := toAuthorizationResponse(auth, total)
	return &resp, nil
}

// List devuelve los CAI de la empresa con su remanente (tablero operativo).
// El remanente sale de los contadores del CAI: los correlativos anulados ya
// contaron como usados al emitirse, así que total - usados es lo disponible.
func (uc *RegisterAuthorizationUseCase) List(ctx context.Context, companyID string) ([]dto.AuthorizationResponse, error) {
	auths, err := uc.authRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar CAI: %w", err)
	}
	now := time.Now()
	out := make([]dto.AuthorizationResponse, 0, len(auths))
	for _, a := range auths {
		resp := toAuthorizationResponse(a, a.Remaining())
		// La fecha límite se aplica en la asignación, no con un barrido que
		// actualice filas; el tablero sí debe mostrar el CAI como vencido.
		if a.Status == entity.AuthorizationStatusActive && !a.IsUsable(now) {
			resp.Status = entity.AuthorizationStatusExpired
		}
		out = append(out, resp)
	}
	return out, nil
}

func toAuthorizationResponse(a *entity.Authorization, remaining int64) dto.AuthorizationResponse {
	return dto.AuthorizationResponse{
		ID:                a.ID,
		BranchID:          a.BranchID,
		DocumentType:      a.DocumentType,
		CAI:               a.CAI,
		RangeStart:        a.RangeStart,
		RangeEnd:          a.RangeEnd,
		TotalDocuments:    a.TotalDocuments,
		UsedDocuments:     a.UsedDocuments,
		Remaining:         remaining,
		AuthorizationDate: a.AuthorizationDate.Format("2006-01-02"),
		ExpirationDate:    a.ExpirationDate.Format("2006-01-02"),
		Status:            a.Status,
	}
}
