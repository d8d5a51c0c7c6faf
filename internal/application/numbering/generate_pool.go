package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/fiscal"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// DefaultBatchSize es el tamaño de lote de inserción al generar el pool.
// Los rangos pueden superar 10^6 números; lotes acotados mantienen cada
// transacción de escritura pequeña.
const DefaultBatchSize = 1000

// GeneratePoolUseCase materializa el pool de correlativos de un CAI a partir
// de su rango autorizado. Es una operación administrativa de una sola vez por
// CAI: reejecutarla falla con ErrPoolAlreadyGenerated.
type GeneratePoolUseCase struct {
	authRepo  repository.AuthorizationRepository
	corrRepo  repository.CorrelativeRepository
	batchSize int
	seqWidth  int
}

// NewGeneratePoolUseCase construye el caso de uso. batchSize <= 0 usa
// DefaultBatchSize; seqWidth <= 0 usa el ancho de correlativo por defecto.
func NewGeneratePoolUseCase(
	authRepo repository.AuthorizationRepository,
	corrRepo repository.CorrelativeRepository,
	batchSize int,
	seqWidth int,
) *GeneratePoolUseCase {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &GeneratePoolUseCase{authRepo: authRepo, corrRepo: corrRepo, batchSize: batchSize, seqWidth: seqWidth}
}

// Generate crea un correlativo DISPONIBLE por cada número del rango [inicio,
// fin] inclusive, con su número fiscal materializado, y fija TotalDocuments.
// Devuelve la cantidad generada.
func (uc *GeneratePoolUseCase) Generate(ctx context.Context, authorizationID string) (int64, error) {
	auth, err := uc.authRepo.GetByID(ctx, authorizationID)
	if err != nil {
		return 0, fmt.Errorf("obtener CAI: %w", err)
	}
	if auth == nil {
		return 0, domain.ErrNotFound
	}

	// Guarda de una sola ejecución: con filas existentes (o total ya fijado)
	// volver a generar duplicaría números en silencio.
	existing, err := uc.corrRepo.CountByAuthorization(ctx, auth.ID)
	if err != nil {
		return 0, fmt.Errorf("contar correlativos existentes: %w", err)
	}
	if existing > 0 || auth.TotalDocuments > 0 {
		return 0, domain.ErrPoolAlreadyGenerated
	}

	start, end, err := fiscal.ParseRange(auth.RangeStart, auth.RangeEnd)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	format := fiscal.NumberFormat{
		EstablishmentCode: auth.EstablishmentCode,
		EmissionPointCode: auth.EmissionPointCode,
		DocumentTypeCode:  auth.DocumentTypeCode,
		SequenceWidth:     uc.seqWidth,
	}

	now := time.Now()
	batch := make([]*entity.Correlative, 0, uc.batchSize)
	for seq := start; seq <= end; seq++ {
		number, err := format.Format(seq)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		batch = append(batch, &entity.Correlative{
			ID:              uuid.New().String(),
			AuthorizationID: auth.ID,
			SequenceNumber:  seq,
			FormattedNumber: number,
			Status:          entity.CorrelativeStatusAvailable,
			CreatedAt:       now,
		})
		if len(batch) == uc.batchSize {
			if err := uc.corrRepo.CreateBatch(ctx, batch); err != nil {
				return 0, fmt.Errorf("insertar lote de correlativos: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := uc.corrRepo.CreateBatch(ctx, batch); err != nil {
			return 0, fmt.Errorf("insertar lote de correlativos: %w", err)
		}
	}

	total := end - start + 1
	if err := uc.authRepo.SetTotalDocuments(ctx, auth.ID, total); err != nil {
		return 0, fmt.Errorf("fijar total de documentos: %w", err)
	}
	return total, nil
}
