package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotelbooking-backend/internal/domains/payment/model"
	"hotelbooking-backend/internal/domains/payment/service"
	"hotelbooking-backend/internal/shared/response"
	"hotelbooking-backend/pkg/logger"
)

// =====================================================
// PAYMENT HANDLER
// =====================================================

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

func (h *PaymentHandler) RegisterRoutes(protected *gin.RouterGroup) {
	payments := protected.Group("/payments")
	{
		payments.POST("", h.CreatePayment)                  // POST /v1/payments
		payments.GET("", h.ListPayments)                    // GET /v1/payments?page=1&limit=20
		payments.GET("/:orderId/status", h.GetPaymentStatus) // GET /v1/payments/:orderId/status
	}
}

// =====================================================
// CREATE PAYMENT
// =====================================================

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.paymentService.CreatePayment(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// =====================================================
// STATUS / LISTING
// =====================================================

func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	orderID := c.Param("orderId")
	if orderID == "" {
		response.BadRequest(c, "Order ID is required")
		return
	}

	status, err := h.paymentService.GetPaymentStatus(c.Request.Context(), orderID, userID, isAdmin(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, status)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, payments, &response.Meta{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	})
}

// =====================================================
// HELPERS
// =====================================================

func getUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("userRole")
	r, _ := role.(string)
	return r == "admin"
}

func (h *PaymentHandler) handleServiceError(c *gin.Context, err error) {
	var payErr *model.PaymentError

	switch {
	case errors.As(err, &payErr):
		switch payErr.Code {
		case model.ErrCodeValidation:
			response.ErrorResponse(c, http.StatusBadRequest, payErr.Code, payErr.Message)
		case model.ErrCodeDuplicateOrder:
			response.ErrorResponse(c, http.StatusConflict, payErr.Code, payErr.Message)
		case model.ErrCodeSettlementConflict:
			response.ErrorResponse(c, http.StatusConflict, payErr.Code, payErr.Message)
		case model.ErrCodeSignatureInvalid:
			response.ErrorResponse(c, http.StatusBadRequest, payErr.Code, payErr.Message)
		case model.ErrCodeGatewayError:
			response.ErrorResponse(c, http.StatusServiceUnavailable, payErr.Code, payErr.Message)
		case model.ErrCodeBookingNotFound, model.ErrCodeAttemptNotFound:
			response.ErrorResponse(c, http.StatusNotFound, payErr.Code, payErr.Message)
		default:
			logger.Error("payment handler error", err)
			response.InternalServerError(c, "Something went wrong")
		}
	case errors.Is(err, model.ErrAttemptNotFound):
		response.NotFound(c, "Payment not found")
	default:
		logger.Error("payment handler error", err)
		response.InternalServerError(c, "Something went wrong")
	}
}
