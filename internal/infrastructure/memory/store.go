// Package memory implementa los puertos de persistencia en memoria.
// Sirve para pruebas unitarias de los casos de uso sin PostgreSQL, cumpliendo
// el mismo contrato que la implementación real: las transacciones se ejecutan
// bajo exclusión mutua (dos asignadores jamás obtienen el mismo correlativo,
// igual que con FOR UPDATE) y un error del callback revierte todo al snapshot
// previo (atomicidad de asignación + emisión).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/billing"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

var _ numbering.TxRunner = (*Store)(nil)
var _ billing.TxRunner = (*Store)(nil)

// Store es el almacén en memoria. El acceso directo a los repos fuera de una
// transacción no es seguro entre goroutines; las transacciones sí lo son.
type Store struct {
	mu sync.Mutex

	authorizations map[string]entity.Authorization
	correlatives   map[string]entity.Correlative
	invoices       map[string]entity.Invoice
	audits         []entity.VoidAudit
	sales          map[string]entity.Sale
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		authorizations: make(map[string]entity.Authorization),
		correlatives:   make(map[string]entity.Correlative),
		invoices:       make(map[string]entity.Invoice),
		sales:          make(map[string]entity.Sale),
	}
}

// AddSale siembra una venta (dato de colaborador, solo lectura).
func (s *Store) AddSale(sale entity.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[sale.ID] = sale
}

// Authorization devuelve una copia del CAI, para aserciones en tests.
func (s *Store) Authorization(id string) (entity.Authorization, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.authorizations[id]
	return a, ok
}

// Correlative devuelve una copia del correlativo, para aserciones en tests.
func (s *Store) Correlative(id string) (entity.Correlative, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.correlatives[id]
	return c, ok
}

// CorrelativesByAuthorization devuelve copias de los correlativos de un CAI
// en orden ascendente de número, para aserciones en tests.
func (s *Store) CorrelativesByAuthorization(authorizationID string) []entity.Correlative {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Correlative
	for _, c := range s.correlatives {
		if c.AuthorizationID == authorizationID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNumber < out[j].SequenceNumber })
	return out
}

// Invoice devuelve una copia de la factura, para aserciones en tests.
func (s *Store) Invoice(id string) (entity.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	return inv, ok
}

// VoidAudits devuelve una copia del registro de auditoría de anulaciones.
func (s *Store) VoidAudits() []entity.VoidAudit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.VoidAudit, len(s.audits))
	copy(out, s.audits)
	return out
}

// AuthorizationRepository devuelve el repo de CAI (sin transacción).
func (s *Store) AuthorizationRepository() repository.AuthorizationRepository {
	return &authorizationRepo{s: s}
}

// CorrelativeRepository devuelve el repo de correlativos (sin transacción).
func (s *Store) CorrelativeRepository() repository.CorrelativeRepository {
	return &correlativeRepo{s: s}
}

// InvoiceRepository devuelve el repo de facturas (sin transacción).
func (s *Store) InvoiceRepository() repository.InvoiceRepository {
	return &invoiceRepo{s: s}
}

// SaleRepository devuelve el repo de ventas (solo lectura).
func (s *Store) SaleRepository() repository.SaleRepository {
	return &saleRepo{s: s}
}

// RunNumbering ejecuta fn bajo exclusión mutua con rollback por snapshot.
func (s *Store) RunNumbering(ctx context.Context, fn func(
	authRepo repository.AuthorizationRepository,
	corrRepo repository.CorrelativeRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&authorizationRepo{s: s}, &correlativeRepo{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunBilling ejecuta fn bajo exclusión mutua con rollback por snapshot.
func (s *Store) RunBilling(ctx context.Context, fn func(
	authRepo repository.AuthorizationRepository,
	corrRepo repository.CorrelativeRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&authorizationRepo{s: s}, &correlativeRepo{s: s}, &invoiceRepo{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	authorizations map[string]entity.Authorization
	correlatives   map[string]entity.Correlative
	invoices       map[string]entity.Invoice
	audits         []entity.VoidAudit
}

func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		authorizations: make(map[string]entity.Authorization, len(s.authorizations)),
		correlatives:   make(map[string]entity.Correlative, len(s.correlatives)),
		invoices:       make(map[string]entity.Invoice, len(s.invoices)),
		audits:         make([]entity.VoidAudit, len(s.audits)),
	}
	for k, v := range s.authorizations {
		snap.authorizations[k] = v
	}
	for k, v := range s.correlatives {
		snap.correlatives[k] = v
	}
	for k, v := range s.invoices {
		snap.invoices[k] = v
	}
	copy(snap.audits, s.audits)
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.authorizations = snap.authorizations
	s.correlatives = snap.correlatives
	s.invoices = snap.invoices
	s.audits = snap.audits
}

// sortedAvailable devuelve los correlativos DISPONIBLES de un CAI en orden
// ascendente de número.
func (s *Store) sortedAvailable(authorizationID string) []entity.Correlative {
	var out []entity.Correlative
	for _, c := range s.correlatives {
		if c.AuthorizationID == authorizationID && c.Status == entity.CorrelativeStatusAvailable {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNumber < out[j].SequenceNumber })
	return out
}

func timePtr(t time.Time) *time.Time { return &t }
