package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/billing"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/dto"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
)

// issueOne emite una factura sobre la venta dada y devuelve su respuesta.
func (f *fixture) issueOne(t *testing.T, saleID string) *dto.InvoiceResponse {
	t.Helper()
	f.seedSale(t, saleID)
	resp, err := f.issuer.IssueInvoice(context.Background(), testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: saleID})
	require.NoError(t, err)
	return resp
}

// TestVoidInvoice_CaminoFeliz anula una factura y verifica la transacción
// completa: campos de anulación, correlativo ANULADO y registro de auditoría.
func TestVoidInvoice_CaminoFeliz(t *testing.T) {
	f := newFixture(t, 10)
	issued := f.issueOne(t, "venta-1")
	void := billing.NewVoidInvoiceUseCase(f.store)

	resp, err := void.VoidInvoice(context.Background(), testCompanyID, testUserID, issued.ID,
		dto.VoidInvoiceRequest{Reason: entity.VoidReasonReturn, Notes: "cliente devolvió la mercadería"})
	require.NoError(t, err)
	assert.True(t, resp.IsVoided)
	assert.Equal(t, entity.VoidReasonReturn, resp.VoidReason)
	assert.NotEmpty(t, resp.VoidedAt)

	inv, ok := f.store.Invoice(issued.ID)
	require.True(t, ok)
	assert.True(t, inv.IsVoided)
	assert.Equal(t, "cliente devolvió la mercadería", inv.VoidNotes)
	assert.Equal(t, testUserID, inv.VoidedBy)
	require.NotNil(t, inv.VoidedAt)

	// El número jamás se reutiliza: USADO → ANULADO, nunca de vuelta a
	// DISPONIBLE.
	corr, ok := f.store.Correlative(inv.CorrelativeID)
	require.True(t, ok)
	assert.Equal(t, entity.CorrelativeStatusVoided, corr.Status)
	require.NotNil(t, corr.VoidedAt)

	audits := f.store.VoidAudits()
	require.Len(t, audits, 1)
	assert.Equal(t, inv.ID, audits[0].InvoiceID)
	assert.Equal(t, inv.CorrelativeID, audits[0].CorrelativeID)
	assert.Equal(t, entity.VoidReasonReturn, audits[0].Reason)
	assert.Equal(t, testUserID, audits[0].VoidedBy)
}

// TestVoidInvoice_ContadorNoRetrocede verifica que used_documents es monótono:
// anular no devuelve el número al pool ni decrementa el contador.
func TestVoidInvoice_ContadorNoRetrocede(t *testing.T) {
	f := newFixture(t, 10)
	issued := f.issueOne(t, "venta-1")
	void := billing.NewVoidInvoiceUseCase(f.store)

	before, _ := f.store.Authorization(f.auth.ID)
	_, err := void.VoidInvoice(context.Background(), testCompanyID, testUserID, issued.ID,
		dto.VoidInvoiceRequest{Reason: entity.VoidReasonDuplicate})
	require.NoError(t, err)

	after, _ := f.store.Authorization(f.auth.ID)
	assert.Equal(t, before.UsedDocuments, after.UsedDocuments)
	assert.Equal(t, int64(9), f.availableCount(t), "el remanente no crece al anular")
}

// TestVoidInvoice_DobleAnulacionFalla verifica que la anulación es de una sola
// vez y que el correlativo permanece ANULADO.
func TestVoidInvoice_DobleAnulacionFalla(t *testing.T) {
	f := newFixture(t, 10)
	issued := f.issueOne(t, "venta-1")
	void := billing.NewVoidInvoiceUseCase(f.store)
	ctx := context.Background()

	_, err := void.VoidInvoice(ctx, testCompanyID, testUserID, issued.ID,
		dto.VoidInvoiceRequest{Reason: entity.VoidReasonDataEntryError})
	require.NoError(t, err)

	_, err = void.VoidInvoice(ctx, testCompanyID, testUserID, issued.ID,
		dto.VoidInvoiceRequest{Reason: entity.VoidReasonDataEntryError})
	require.ErrorIs(t, err, domain.ErrAlreadyVoided)

	inv, _ := f.store.Invoice(issued.ID)
	corr, _ := f.store.Correlative(inv.CorrelativeID)
	assert.Equal(t, entity.CorrelativeStatusVoided, corr.Status)
	assert.Len(t, f.store.VoidAudits(), 1, "la segunda anulación no agrega auditoría")
}

// TestVoidInvoice_MotivoInvalido verifica el catálogo cerrado de motivos.
func TestVoidInvoice_MotivoInvalido(t *testing.T) {
	f := newFixture(t, 10)
	issued := f.issueOne(t, "venta-1")
	void := billing.NewVoidInvoiceUseCase(f.store)

	_, err := void.VoidInvoice(context.Background(), testCompanyID, testUserID, issued.ID,
		dto.VoidInvoiceRequest{Reason: "ME_ARREPENTI"})
	require.ErrorIs(t, err, domain.ErrInvalidVoidReason)

	inv, _ := f.store.Invoice(issued.ID)
	assert.False(t, inv.IsVoided)
}

// TestVoidInvoice_FacturaInexistente verifica el caso de ID desconocido.
func TestVoidInvoice_FacturaInexistente(t *testing.T) {
	f := newFixture(t, 10)
	void := billing.NewVoidInvoiceUseCase(f.store)
	_, err := void.VoidInvoice(context.Background(), testCompanyID, testUserID, "factura-fantasma",
		dto.VoidInvoiceRequest{Reason: entity.VoidReasonOther})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// TestVoidInvoice_FacturaDeOtraEmpresa verifica el aislamiento multiempresa
// en la anulación.
func TestVoidInvoice_FacturaDeOtraEmpresa(t *testing.T) {
	f := newFixture(t, 10)
	issued := f.issueOne(t, "venta-1")
	void := billing.NewVoidInvoiceUseCase(f.store)
	_, err := void.VoidInvoice(context.Background(), "otra-empresa", testUserID, issued.ID,
		dto.VoidInvoiceRequest{Reason: entity.VoidReasonOther})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

// TestVoidInvoice_PermiteRefacturarLaVenta verifica que tras anular, la venta
// puede facturarse de nuevo con el siguiente correlativo (a lo sumo una
// factura VIGENTE por venta, no una por historia).
func TestVoidInvoice_PermiteRefacturarLaVenta(t *testing.T) {
	f := newFixture(t, 10)
	issued := f.issueOne(t, "venta-1")
	void := billing.NewVoidInvoiceUseCase(f.store)
	ctx := context.Background()

	_, err := void.VoidInvoice(ctx, testCompanyID, testUserID, issued.ID,
		dto.VoidInvoiceRequest{Reason: entity.VoidReasonDataEntryError})
	require.NoError(t, err)

	reissued, err := f.issuer.IssueInvoice(ctx, testCompanyID, testUserID,
		dto.IssueInvoiceRequest{SaleID: "venta-1"})
	require.NoError(t, err)
	assert.Equal(t, "000-001-01-00000002", reissued.InvoiceNumber,
		"la refacturación consume el siguiente número, nunca el anulado")
}
