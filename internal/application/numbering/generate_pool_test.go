package numbering_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "empresa-1"
	testBranchID  = "sucursal-1"
)

// seedAuthorization crea un CAI ACTIVA con el rango dado (formato plano) y lo
// persiste en el store. La fecha límite queda un año en el futuro.
func seedAuthorization(t *testing.T, store *memory.Store, start, end int64) *entity.Authorization {
	t.Helper()
	now := time.Now()
	auth := &entity.Authorization{
		ID:                uuid.New().String(),
		CompanyID:         testCompanyID,
		BranchID:          testBranchID,
		DocumentType:      entity.DocumentTypeInvoice,
		CAI:               fmt.Sprintf("254F8-612F1-8A0E0-6E8B3-%06d-36", start),
		RangeStart:        fmt.Sprintf("000-001-01-%08d", start),
		RangeEnd:          fmt.Sprintf("000-001-01-%08d", end),
		EstablishmentCode: "000",
		EmissionPointCode: "001",
		DocumentTypeCode:  "01",
		AuthorizationDate: now,
		ExpirationDate:    now.AddDate(1, 0, 0),
		Status:            entity.AuthorizationStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.AuthorizationRepository().Create(context.Background(), auth))
	return auth
}

// generatePool materializa el pool del CAI y devuelve la cantidad generada.
func generatePool(t *testing.T, store *memory.Store, authID string) int64 {
	t.Helper()
	uc := numbering.NewGeneratePoolUseCase(
		store.AuthorizationRepository(), store.CorrelativeRepository(), 0, 0)
	total, err := uc.Generate(context.Background(), authID)
	require.NoError(t, err)
	return total
}

// ──────────────────────────────────────────────────────────────────────────────
// Generación del pool
// ──────────────────────────────────────────────────────────────────────────────

// TestGeneratePool_RangoCompleto verifica que un rango [1, 1000] produce
// exactamente 1000 correlativos DISPONIBLES, contiguos y sin huecos.
func TestGeneratePool_RangoCompleto(t *testing.T) {
	store := memory.NewStore()
	auth := seedAuthorization(t, store, 1, 1000)

	total := generatePool(t, store, auth.ID)
	assert.Equal(t, int64(1000), total)

	pool := store.CorrelativesByAuthorization(auth.ID)
	require.Len(t, pool, 1000)
	for i, corr := range pool {
		assert.Equal(t, int64(i+1), corr.SequenceNumber, "la secuencia no debe tener huecos")
		assert.Equal(t, entity.CorrelativeStatusAvailable, corr.Status)
		assert.Equal(t, auth.ID, corr.AuthorizationID)
	}
	assert.Equal(t, "000-001-01-00000001", pool[0].FormattedNumber)
	assert.Equal(t, "000-001-01-00001000", pool[999].FormattedNumber)

	stored, ok := store.Authorization(auth.ID)
	require.True(t, ok)
	assert.Equal(t, int64(1000), stored.TotalDocuments)
	assert.Equal(t, int64(0), stored.UsedDocuments)
}

// TestGeneratePool_RangoConOffset verifica que un rango que no inicia en 1
// respeta los límites inclusive.
func TestGeneratePool_RangoConOffset(t *testing.T) {
	store := memory.NewStore()
	auth := seedAuthorization(t, store, 5001, 5010)

	total := generatePool(t, store, auth.ID)
	assert.Equal(t, int64(10), total)

	pool := store.CorrelativesByAuthorization(auth.ID)
	require.Len(t, pool, 10)
	assert.Equal(t, int64(5001), pool[0].SequenceNumber)
	assert.Equal(t, int64(5010), pool[9].SequenceNumber)
	assert.Equal(t, "000-001-01-00005001", pool[0].FormattedNumber)
}

// TestGeneratePool_SegundaEjecucionFalla verifica la guarda de una sola
// ejecución: regenerar el pool duplicaría números y debe rechazarse.
func TestGeneratePool_SegundaEjecucionFalla(t *testing.T) {
	store := memory.NewStore()
	auth := seedAuthorization(t, store, 1, 10)
	generatePool(t, store, auth.ID)

	uc := numbering.NewGeneratePoolUseCase(
		store.AuthorizationRepository(), store.CorrelativeRepository(), 0, 0)
	_, err := uc.Generate(context.Background(), auth.ID)
	require.ErrorIs(t, err, domain.ErrPoolAlreadyGenerated)

	assert.Len(t, store.CorrelativesByAuthorization(auth.ID), 10, "el pool no debe crecer")
}

// TestGeneratePool_RangoInvertido verifica que un rango con fin menor que
// inicio se rechaza como error de validación.
func TestGeneratePool_RangoInvertido(t *testing.T) {
	store := memory.NewStore()
	auth := seedAuthorization(t, store, 1, 10)
	require.NoError(t, store.AuthorizationRepository().Create(context.Background(), &entity.Authorization{
		ID:                "cai-invertido",
		CompanyID:         testCompanyID,
		BranchID:          testBranchID,
		DocumentType:      entity.DocumentTypeInvoice,
		CAI:               "254F8-612F1-8A0E0-6E8B3-INVERT-36",
		RangeStart:        "000-001-01-00000100",
		RangeEnd:          "000-001-01-00000001",
		EstablishmentCode: auth.EstablishmentCode,
		EmissionPointCode: auth.EmissionPointCode,
		DocumentTypeCode:  auth.DocumentTypeCode,
		ExpirationDate:    auth.ExpirationDate,
		Status:            entity.AuthorizationStatusActive,
	}))

	uc := numbering.NewGeneratePoolUseCase(
		store.AuthorizationRepository(), store.CorrelativeRepository(), 0, 0)
	_, err := uc.Generate(context.Background(), "cai-invertido")
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestGeneratePool_CAIInexistente verifica el caso de ID desconocido.
func TestGeneratePool_CAIInexistente(t *testing.T) {
	store := memory.NewStore()
	uc := numbering.NewGeneratePoolUseCase(
		store.AuthorizationRepository(), store.CorrelativeRepository(), 0, 0)
	_, err := uc.Generate(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// TestGeneratePool_LotesAcotados verifica que la generación por lotes produce
// el mismo pool que una sola pasada (el tamaño de lote es solo un detalle de
// escritura).
func TestGeneratePool_LotesAcotados(t *testing.T) {
	store := memory.NewStore()
	auth := seedAuthorization(t, store, 1, 25)

	uc := numbering.NewGeneratePoolUseCase(
		store.AuthorizationRepository(), store.CorrelativeRepository(), 7, 0)
	total, err := uc.Generate(context.Background(), auth.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)

	pool := store.CorrelativesByAuthorization(auth.ID)
	require.Len(t, pool, 25)
	for i, corr := range pool {
		assert.Equal(t, int64(i+1), corr.SequenceNumber)
	}
}
