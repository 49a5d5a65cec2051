package handlers

import (
	"context"
	"log"
	"time"

	"github.com/ea-cloud/backend/app/dto"
	businessflow "github.com/ea-cloud/backend/business_flow"
	"github.com/ea-cloud/backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// requiredRegistrationFields lists the field names echoed back on a
// missing-field registration error.
var requiredRegistrationFields = []string{"ea_type", "account", "broker", "name", "phone"}

type AccountHandlerInterface interface {
	Register(c fiber.Ctx) error
	ListAccounts(c fiber.Ctx) error
	GetStatus(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	DeleteAccount(c fiber.Ctx) error
}

type AccountHandler struct {
	flow      businessflow.AccountFlow
	validator *validator.Validate
}

func NewAccountHandler(flow businessflow.AccountFlow) *AccountHandler {
	return &AccountHandler{flow: flow, validator: validator.New()}
}

func (h *AccountHandler) errorResponse(c fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(dto.ErrorResponse{Error: message})
}

func (h *AccountHandler) missingFieldsResponse(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:    "Missing required fields",
		Required: requiredRegistrationFields,
	})
}

// Register creates a pending account registration
func (h *AccountHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterAccountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	log.Printf("Registration request: ea_type=%s account=%s broker=%s name=%s", req.EAType, req.Account, req.Broker, req.Name)

	if err := h.validator.Struct(&req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		if hasRequiredFailure(validationErrors) {
			return h.missingFieldsResponse(c)
		}
		return h.errorResponse(c, fiber.StatusBadRequest, getValidationErrorMessage(validationErrors[0]))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.Register(h.createRequestContext(c, "/api/register"), &req, metadata)
	if err != nil {
		if businessflow.IsMissingField(err) {
			return h.missingFieldsResponse(c)
		}

		log.Println("Registration failed", err)
		return h.errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if res.AlreadyRegistered {
		return c.Status(fiber.StatusConflict).JSON(dto.RegisterConflictResponse{
			Message: res.Message,
			Status:  res.Status,
			Enabled: res.Enabled,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListAccounts returns every account registered under an EA type
func (h *AccountHandler) ListAccounts(c fiber.Ctx) error {
	eaType := c.Params("ea_type")

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.ListByType(h.createRequestContext(c, "/api/accounts/:ea_type"), eaType, metadata)
	if err != nil {
		log.Println("List accounts failed", err)
		return h.errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

// GetStatus returns the status projection of one account
func (h *AccountHandler) GetStatus(c fiber.Ctx) error {
	eaType := c.Params("ea_type")
	account := c.Params("account")

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.GetStatus(h.createRequestContext(c, "/api/accounts/:ea_type/:account/status"), eaType, account, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return h.errorResponse(c, fiber.StatusNotFound, "Account not found")
		}

		log.Println("Get status failed", err)
		return h.errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

// UpdateStatus sets the review status and enabled flag of one account
func (h *AccountHandler) UpdateStatus(c fiber.Ctx) error {
	eaType := c.Params("ea_type")
	account := c.Params("account")

	var req dto.UpdateAccountStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	log.Printf("Update status: ea_type=%s account=%s status=%s enabled=%v", eaType, account, req.Status, utils.IsTrue(req.Enabled))

	if err := h.validator.Struct(&req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		return h.errorResponse(c, fiber.StatusBadRequest, getValidationErrorMessage(validationErrors[0]))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.UpdateStatus(h.createRequestContext(c, "/api/accounts/:ea_type/:account/status"), eaType, account, &req, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return h.errorResponse(c, fiber.StatusNotFound, "Account not found")
		}
		if businessflow.IsInvalidAccountStatus(err) {
			return h.errorResponse(c, fiber.StatusBadRequest, "status must be one of: pending approved rejected")
		}

		log.Println("Update status failed", err)
		return h.errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

// DeleteAccount removes one account registration
func (h *AccountHandler) DeleteAccount(c fiber.Ctx) error {
	eaType := c.Params("ea_type")
	account := c.Params("account")

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.DeleteAccount(h.createRequestContext(c, "/api/accounts/:ea_type/:account"), eaType, account, metadata)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return h.errorResponse(c, fiber.StatusNotFound, "Account not found")
		}

		log.Println("Delete account failed", err)
		return h.errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

func (h *AccountHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *AccountHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
