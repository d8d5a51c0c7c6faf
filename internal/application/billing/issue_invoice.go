package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/dto"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/entity"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/fiscal"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain/repository"
)

// IssuerConfig parámetros fiscales del emisor.
type IssuerConfig struct {
	AlertThreshold      int64           // umbral de la señal de bajo suministro
	DefaultRTN          string          // RTN para consumidor final (cliente anónimo)
	DefaultCustomerName string          // nombre impreso para consumidor final
	DefaultTaxRate      decimal.Decimal // tasa ISV si la venta no trae una (0.15)
}

// IssueInvoiceUseCase emite la factura fiscal de una venta: asigna el
// correlativo y persiste la factura en una sola transacción, con snapshot de
// los datos del CAI al momento de emitir.
type IssueInvoiceUseCase struct {
	txRunner  TxRunner
	saleRepo  repository.SaleRepository
	rtn       *fiscal.RTNValidator
	lowSupply numbering.LowSupplyNotifier
	notifier  IssueNotifier
	cfg       IssuerConfig
	nowFn     func() time.Time
}

// NewIssueInvoiceUseCase construye el caso de uso.
func NewIssueInvoiceUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	rtn *fiscal.RTNValidator,
	lowSupply numbering.LowSupplyNotifier,
	notifier IssueNotifier,
	cfg IssuerConfig,
) *IssueInvoiceUseCase {
	if cfg.DefaultCustomerName == "" {
		cfg.DefaultCustomerName = "CONSUMIDOR FINAL"
	}
	if cfg.DefaultTaxRate.IsZero() {
		cfg.DefaultTaxRate = decimal.New(15, -2) // ISV 15%
	}
	return &IssueInvoiceUseCase{
		txRunner:  txRunner,
		saleRepo:  saleRepo,
		rtn:       rtn,
		lowSupply: lowSupply,
		notifier:  notifier,
		cfg:       cfg,
		nowFn:     time.Now,
	}
}

// IssueInvoice emite la factura de la venta indicada. El tipo de documento y
// los datos del cliente pueden venir como override explícito; si no, se toman
// de la venta y en último término del consumidor final configurado.
func (uc *IssueInvoiceUseCase) IssueInvoice(ctx context.Context, companyID, userID string, in dto.IssueInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.SaleID == "" {
		return nil, domain.ErrInvalidInput
	}

	// La venta es dato de colaborador: solo lectura, fuera de la transacción.
	sale, err := uc.saleRepo.GetByID(ctx, in.SaleID)
	if err != nil {
		return nil, fmt.Errorf("leer venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	docType := in.DocumentType
	if docType == "" {
		docType = entity.DocumentTypeInvoice
	}

	taxed, exempt := partitionSubtotal(sale)
	rate := sale.TaxRate
	if rate.IsZero() {
		rate = uc.cfg.DefaultTaxRate
	}
	tax := taxed.Mul(rate).Round(2)
	discount := sale.Discount.Round(2)
	total := taxed.Add(exempt).Add(tax).Sub(discount).Round(2)

	customerRTN, customerName, err := uc.resolveCustomer(in, sale)
	if err != nil {
		return nil, err
	}

	words, err := fiscal.AmountInWords(total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := uc.nowFn()
	var (
		inv         *entity.Invoice
		drainedAuth *entity.Authorization
	)
	err = uc.txRunner.RunBilling(ctx, func(
		authRepo repository.AuthorizationRepository,
		corrRepo repository.CorrelativeRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		// Guardia 1:1 venta-factura, dentro de la transacción.
		existing, err := invoiceRepo.GetActiveBySaleID(ctx, sale.ID)
		if err != nil {
			return fmt.Errorf("buscar factura de la venta: %w", err)
		}
		if existing != nil {
			return domain.ErrAlreadyInvoiced
		}

		corr, auth, err := numbering.AllocateNextInTx(ctx, authRepo, corrRepo,
			companyID, sale.BranchID, docType, uc.cfg.AlertThreshold, uc.lowSupply, now)
		if err != nil {
			drainedAuth = auth
			return err
		}

		inv = &entity.Invoice{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			BranchID:      sale.BranchID,
			SaleID:        sale.ID,
			CorrelativeID: corr.ID,

			InvoiceNumber: corr.FormattedNumber,
			// Snapshot del CAI: cambios posteriores a la autorización no deben
			// alterar facturas históricas.
			CAI:             auth.CAI,
			CAIExpiration:   auth.ExpirationDate,
			AuthorizedRange: auth.RangeDescription(),

			CustomerRTN:  customerRTN,
			CustomerName: customerName,

			SubtotalExempt: exempt,
			SubtotalTaxed:  taxed,
			Tax:            tax,
			Discount:       discount,
			Total:          total,
			TotalInWords:   words,

			IssuedAt:  now,
			IssuedBy:  userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return fmt.Errorf("guardar factura: %w", err)
		}
		return nil
	})
	if err != nil {
		// Con el pool drenado la transacción completa se revirtió (incluida la
		// marca de agotamiento); asentarla aparte para que el CAI quede AGOTADA.
		if drainedAuth != nil && errors.Is(err, domain.ErrCorrelativeExhausted) {
			_ = uc.txRunner.RunBilling(ctx, func(
				authRepo repository.AuthorizationRepository,
				_ repository.CorrelativeRepository,
				_ repository.InvoiceRepository,
			) error {
				return authRepo.MarkDepleted(ctx, drainedAuth.ID)
			})
		}
		return nil, err
	}

	if uc.notifier != nil {
		uc.notifier.NotifyIssued(ctx, inv)
	}
	return toInvoiceResponse(inv), nil
}

// partitionSubtotal parte el subtotal de la venta en gravado y exento según la
// clasificación fiscal de cada línea. Una venta sin líneas detalladas se trata
// como totalmente gravada.
func partitionSubtotal(sale *entity.Sale) (taxed, exempt decimal.Decimal) {
	if len(sale.Items) == 0 {
		return sale.Subtotal.Round(2), decimal.Zero
	}
	for _, item := range sale.Items {
		if item.TaxExempt {
			exempt = exempt.Add(item.Subtotal)
		} else {
			taxed = taxed.Add(item.Subtotal)
		}
	}
	return taxed.Round(2), exempt.Round(2)
}

// resolveCustomer aplica la precedencia override → venta → consumidor final y
// normaliza el RTN al ancho fijo.
func (uc *IssueInvoiceUseCase) resolveCustomer(in dto.IssueInvoiceRequest, sale *entity.Sale) (rtn, name string, err error) {
	rawRTN := in.CustomerRTN
	if rawRTN == "" {
		rawRTN = sale.CustomerRTN
	}
	if rawRTN == "" {
		rawRTN = uc.cfg.DefaultRTN
	}
	rtn, err = uc.rtn.NormalizeAndValidate(rawRTN)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	name = in.CustomerName
	if name == "" {
		name = sale.CustomerName
	}
	if name == "" {
		name = uc.cfg.DefaultCustomerName
	}
	return rtn, name, nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:              inv.ID,
		CompanyID:       inv.CompanyID,
		BranchID:        inv.BranchID,
		SaleID:          inv.SaleID,
		InvoiceNumber:   inv.InvoiceNumber,
		CAI:             inv.CAI,
		CAIExpiration:   inv.CAIExpiration.Format("2006-01-02"),
		AuthorizedRange: inv.AuthorizedRange,
		CustomerRTN:     inv.CustomerRTN,
		CustomerName:    inv.CustomerName,
		SubtotalExempt:  inv.SubtotalExempt,
		SubtotalTaxed:   inv.SubtotalTaxed,
		Tax:             inv.Tax,
		Discount:        inv.Discount,
		Total:           inv.Total,
		TotalInWords:    inv.TotalInWords,
		IssuedAt:        inv.IssuedAt.Format(time.RFC3339),
		IsVoided:        inv.IsVoided,
		VoidReason:      inv.VoidReason,
	}
	if inv.VoidedAt != nil {
		resp.VoidedAt = inv.VoidedAt.Format(time.RFC3339)
	}
	return resp
}
