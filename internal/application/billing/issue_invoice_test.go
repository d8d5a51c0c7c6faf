package billing_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/billing"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/dto"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/fiscal"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID  = "empresa-1"
	testBranchID   = "sucursal-1"
	testUserID     = "usuario-1"
	testDefaultRTN = "99999999999999"
	testCAI        = "254F8-612F1-8A0E0-6E8B3-0099B9-36"
)

// fixture arma un store con un CAI activo de rango [1, n] y su pool generado.
type fixture struct {
	store  *memory.Store
	auth   *entity.Authorization
	issuer *billing.IssueInvoiceUseCase
}

func newFixture(t *testing.T, poolSize int64) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := time.Now()
	auth := &entity.Authorization{
		ID:                uuid.New().String(),
		CompanyID:         testCompanyID,
		BranchID:          testBranchID,
		DocumentType:      entity.DocumentTypeInvoice,
		CAI:               testCAI,
		RangeStart:        "000-001-01-00000001",
		RangeEnd:          fmt.Sprintf("000-001-01-%08d", poolSize),
		EstablishmentCode: "000",
		EmissionPointCode: "001",
		DocumentTypeCode:  "01",
		AuthorizationDate: now,
		ExpirationDate:    now.AddDate(1, 0, 0),
		Status:            entity.AuthorizationStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	ctx := context.Background()
	require.NoError(t, store.AuthorizationRepository().Create(ctx, auth))
	poolUC := numbering.NewGeneratePoolUseCase(
		store.AuthorizationRepository(), store.CorrelativeRepository(), 0, 0)
	_, err := poolUC.Generate(ctx, auth.ID)
	require.NoError(t, err)

	rtnValidator, err := fiscal.NewRTNValidator("", 0)
	require.NoError(t, err)
	issuer := billing.NewIssueInvoiceUseCase(
		store, store.SaleRepository(), rtnValidator, nil, nil,
		billing.IssuerConfig{
			AlertThreshold: 3,
			DefaultRTN:     testDefaultRTN,
		})
	return &fixture{store: store, auth: auth, issuer: issuer}
}

// seedSale siembra una venta con dos líneas: 60 gravado y 40 exento, con ISV
// del 15% sobre la porción gravada.
func (f *fixture) seedSale(t *testing.T, saleID string) entity.Sale {
	t.Helper()
	sale := entity.Sale{
		ID:        saleID,
		CompanyID: testCompanyID,
		BranchID:  testBranchID,
		Subtotal:  decimal.NewFromInt(100),
		Discount:  decimal.Zero,
		Total:     decimal.NewFromInt(109),
		TaxRate:   decimal.New(15, -2),
		Items: []entity.SaleItem{
			{
				ID: uuid.New().String(), SaleID: saleID, ProductID: "prod-gravado",
				Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(30),
				Subtotal: decimal.NewFromInt(60), TaxExempt: false,
			},
			{
				ID: uuid.New().String(), SaleID: saleID, ProductID: "prod-exento",
				Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(40),
				Subtotal: decimal.NewFromInt(40), TaxExempt: true,
			},
		},
		CreatedAt: time.Now(),
	}
	f.store.AddSale(sale)
	return sale
}

func (f *fixture) availableCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.store.CorrelativeRepository().CountAvailable(context.Background(), f.auth.ID)
	require.NoError(t, err)
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión
// ──────────────────────────────────────────────────────────────────────────────

// TestIssueInvoice_ParticionGravadoExento emite la factura de una venta 60/40
// y verifica los montos: el ISV se calcula solo sobre la porción gravada.
func TestIssueInvoice_ParticionGravadoExento(t *testing.T) {
	f := newFixture(t, 10)
	f.seedSale(t, "venta-1")

	resp, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.NoError(t, err)

	assert.Equal(t, "60.00", resp.SubtotalTaxed.StringFixed(2))
	assert.Equal(t, "40.00", resp.SubtotalExempt.StringFixed(2))
	assert.Equal(t, "9.00", resp.Tax.StringFixed(2), "ISV del 15 por ciento solo sobre los 60 gravados")
	assert.Equal(t, "0.00", resp.Discount.StringFixed(2))
	assert.Equal(t, "109.00", resp.Total.StringFixed(2))
	assert.Equal(t, "CIENTO NUEVE LEMPIRAS CON 00/100", resp.TotalInWords)
}

// TestIssueInvoice_SnapshotDelCAI verifica que la factura congela los datos de
// la autorización al momento de emitir.
func TestIssueInvoice_SnapshotDelCAI(t *testing.T) {
	f := newFixture(t, 10)
	f.seedSale(t, "venta-1")

	resp, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.NoError(t, err)

	assert.Equal(t, "000-001-01-00000001", resp.InvoiceNumber, "primer correlativo del rango")
	assert.Equal(t, testCAI, resp.CAI)
	assert.Equal(t, f.auth.ExpirationDate.Format("2006-01-02"), resp.CAIExpiration)
	assert.Equal(t, "000-001-01-00000001 al 000-001-01-00000010", resp.AuthorizedRange)

	// El correlativo quedó consumido y el contador avanzó.
	inv, ok := f.store.Invoice(resp.ID)
	require.True(t, ok)
	corr, ok := f.store.Correlative(inv.CorrelativeID)
	require.True(t, ok)
	assert.Equal(t, entity.CorrelativeStatusUsed, corr.Status)
	auth, _ := f.store.Authorization(f.auth.ID)
	assert.Equal(t, int64(1), auth.UsedDocuments)
}

// TestIssueInvoice_ConsumidorFinal verifica la precedencia de datos del
// cliente: sin override y sin cliente en la venta, se usa el RTN configurado
// de consumidor final.
func TestIssueInvoice_ConsumidorFinal(t *testing.T) {
	f := newFixture(t, 10)
	f.seedSale(t, "venta-1")

	resp, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.NoError(t, err)
	assert.Equal(t, testDefaultRTN, resp.CustomerRTN)
	assert.Equal(t, "CONSUMIDOR FINAL", resp.CustomerName)
}

// TestIssueInvoice_ClienteDeLaVenta verifica que los datos de cliente
// guardados en la venta se usan cuando no hay override, con el RTN
// normalizado al ancho fijo.
func TestIssueInvoice_ClienteDeLaVenta(t *testing.T) {
	f := newFixture(t, 10)
	sale := f.seedSale(t, "venta-1")
	sale.CustomerRTN = "0801-1999-12345"
	sale.CustomerName = "Comercial Asturias"
	f.store.AddSale(sale)

	resp, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.NoError(t, err)
	assert.Equal(t, "00801199912345", resp.CustomerRTN, "RTN normalizado a 14 dígitos")
	assert.Equal(t, "Comercial Asturias", resp.CustomerName)
}

// TestIssueInvoice_OverrideExplicito verifica que el override del request gana
// sobre los datos de la venta.
func TestIssueInvoice_OverrideExplicito(t *testing.T) {
	f := newFixture(t, 10)
	sale := f.seedSale(t, "venta-1")
	sale.CustomerRTN = "08011999000001"
	sale.CustomerName = "Cliente De La Venta"
	f.store.AddSale(sale)

	resp, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{
			SaleID:       "venta-1",
			CustomerRTN:  "08019995554443",
			CustomerName: "Cliente Override",
		})
	require.NoError(t, err)
	assert.Equal(t, "08019995554443", resp.CustomerRTN)
	assert.Equal(t, "Cliente Override", resp.CustomerName)
}

// TestIssueInvoice_VentaYaFacturada verifica la guarda 1:1: la segunda emisión
// falla y no quema un correlativo.
func TestIssueInvoice_VentaYaFacturada(t *testing.T) {
	f := newFixture(t, 10)
	f.seedSale(t, "venta-1")
	ctx := context.Background()

	_, err := f.issuer.IssueInvoice(ctx, testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.NoError(t, err)
	require.Equal(t, int64(9), f.availableCount(t))

	_, err = f.issuer.IssueInvoice(ctx, testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.ErrorIs(t, err, domain.ErrAlreadyInvoiced)

	// La transacción fallida se revirtió completa: mismo remanente, el
	// correlativo 2 sigue DISPONIBLE y el contador no avanzó.
	assert.Equal(t, int64(9), f.availableCount(t))
	pool := f.store.CorrelativesByAuthorization(f.auth.ID)
	assert.Equal(t, entity.CorrelativeStatusAvailable, pool[1].Status)
	auth, _ := f.store.Authorization(f.auth.ID)
	assert.Equal(t, int64(1), auth.UsedDocuments)
}

// TestIssueInvoice_VentaInexistente verifica que una venta desconocida falla
// sin tocar el pool.
func TestIssueInvoice_VentaInexistente(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-fantasma"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(10), f.availableCount(t))
}

// TestIssueInvoice_VentaDeOtraEmpresa verifica el aislamiento multiempresa.
func TestIssueInvoice_VentaDeOtraEmpresa(t *testing.T) {
	f := newFixture(t, 10)
	f.seedSale(t, "venta-1")
	_, err := f.issuer.IssueInvoice(context.Background(), "otra-empresa", testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

// TestIssueInvoice_SinCAIFalla verifica que sin CAI activo la emisión falla y
// no persiste factura alguna.
func TestIssueInvoice_SinCAIFalla(t *testing.T) {
	store := memory.NewStore()
	store.AddSale(entity.Sale{
		ID: "venta-1", CompanyID: testCompanyID, BranchID: testBranchID,
		Subtotal: decimal.NewFromInt(100), Total: decimal.NewFromInt(115),
		TaxRate: decimal.New(15, -2),
	})
	rtnValidator, err := fiscal.NewRTNValidator("", 0)
	require.NoError(t, err)
	issuer := billing.NewIssueInvoiceUseCase(
		store, store.SaleRepository(), rtnValidator, nil, nil,
		billing.IssuerConfig{DefaultRTN: testDefaultRTN})

	_, err = issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.ErrorIs(t, err, domain.ErrNoActiveAuthorization)
}

// TestIssueInvoice_VentaSinLineas verifica que una venta sin detalle de líneas
// se trata como totalmente gravada.
func TestIssueInvoice_VentaSinLineas(t *testing.T) {
	f := newFixture(t, 10)
	f.store.AddSale(entity.Sale{
		ID: "venta-1", CompanyID: testCompanyID, BranchID: testBranchID,
		Subtotal: decimal.NewFromInt(200), Discount: decimal.NewFromInt(10),
		Total: decimal.NewFromInt(220), TaxRate: decimal.New(15, -2),
	})

	resp, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.NoError(t, err)
	assert.Equal(t, "200.00", resp.SubtotalTaxed.StringFixed(2))
	assert.Equal(t, "0.00", resp.SubtotalExempt.StringFixed(2))
	assert.Equal(t, "30.00", resp.Tax.StringFixed(2))
	assert.Equal(t, "220.00", resp.Total.StringFixed(2), "200 + 30 de ISV - 10 de descuento")
}

// TestIssueInvoice_UnaVigentePorVentaEnElRepositorio verifica que el
// repositorio rechaza una segunda factura vigente para la misma venta aunque
// el caller se salte la guardia de lectura (es el contrato del índice parcial
// por venta: dos emisiones concurrentes pasan ambas la guardia, pero solo un
// insert compromete).
func TestIssueInvoice_UnaVigentePorVentaEnElRepositorio(t *testing.T) {
	f := newFixture(t, 10)
	f.seedSale(t, "venta-1")
	ctx := context.Background()

	first, err := f.issuer.IssueInvoice(ctx, testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.NoError(t, err)

	dup := &entity.Invoice{
		ID:            uuid.New().String(),
		CompanyID:     testCompanyID,
		BranchID:      testBranchID,
		SaleID:        "venta-1",
		CorrelativeID: uuid.New().String(),
		InvoiceNumber: "000-001-01-00000099",
		IssuedAt:      time.Now(),
	}
	err = f.store.InvoiceRepository().Create(ctx, dup)
	require.ErrorIs(t, err, domain.ErrAlreadyInvoiced)

	// Anulada la primera, la venta puede volver a facturarse.
	void := billing.NewVoidInvoiceUseCase(f.store)
	_, err = void.VoidInvoice(ctx, testCompanyID, testUserID, first.ID,
		dto.VoidInvoiceRequest{Reason: entity.VoidReasonDataEntryError})
	require.NoError(t, err)
	require.NoError(t, f.store.InvoiceRepository().Create(ctx, dup))
}

// TestIssueInvoice_EmisionesConcurrentesDeLaMismaVenta verifica que bajo
// concurrencia solo una emisión gana y consume exactamente un correlativo;
// las demás reciben el conflicto de venta ya facturada.
func TestIssueInvoice_EmisionesConcurrentesDeLaMismaVenta(t *testing.T) {
	f := newFixture(t, 10)
	f.seedSale(t, "venta-1")

	const emitters = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		issued    int
		conflicts int
	)
	for i := 0; i < emitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
				dto.IssueInvoiceRequest{SaleID: "venta-1"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				issued++
			case errors.Is(err, domain.ErrAlreadyInvoiced):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, issued, "exactamente una emisión gana")
	assert.Equal(t, emitters-1, conflicts)
	assert.Equal(t, int64(9), f.availableCount(t), "las emisiones perdedoras no queman números")
}
