package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/dto"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/application/numbering"
	"github.com/joseeliezerr7/pos-saas-backend-sub000/internal/domain"
)

// AuthorizationHandler maneja las peticiones HTTP de CAI (solo admin).
type AuthorizationHandler struct {
	uc *numbering.RegisterAuthorizationUseCase
}

// NewAuthorizationHandler construye el handler.
func NewAuthorizationHandler(uc *numbering.RegisterAuthorizationUseCase) *AuthorizationHandler {
	return &AuthorizationHandler{uc: uc}
}

// Register registra un CAI del SAR y genera su pool de correlativos.
// POST /api/fiscal/authorizations
func (h *AuthorizationHandler) Register(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterAuthorizationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	auth, err := h.uc.Register(c.Context(), companyID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_CAI", Message: "ya existe una autorización con ese CAI"})
		}
		if errors.Is(err, domain.ErrPoolAlreadyGenerated) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "POOL_EXISTS", Message: "el pool de correlativos ya fue generado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(auth)
}

// List devuelve los CAI de la empresa con su remanente.
// GET /api/fiscal/authorizations
func (h *AuthorizationHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	auths, err := h.uc.List(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(auths)
}
