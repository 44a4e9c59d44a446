package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelbooking-backend/internal/domains/payment/model"
	"hotelbooking-backend/internal/domains/payment/service"
	"hotelbooking-backend/internal/shared/response"
	"hotelbooking-backend/pkg/logger"
)

// =====================================================
// WEBHOOK HANDLER
// =====================================================

// WebhookHandler receives gateway returns and IPNs. These routes are
// public: the caller is the gateway (or the customer's browser), not an
// authenticated user, and each payload authenticates itself by
// signature.
type WebhookHandler struct {
	paymentService service.PaymentService
}

func NewWebhookHandler(paymentService service.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

func (h *WebhookHandler) RegisterRoutes(public *gin.RouterGroup) {
	payments := public.Group("/payments")
	{
		payments.GET("/vnpay/return", h.VNPayReturn) // GET /v1/payments/vnpay/return
		payments.GET("/vnpay/ipn", h.VNPayIPN)       // GET /v1/payments/vnpay/ipn
		payments.GET("/momo/return", h.MomoReturn)   // GET /v1/payments/momo/return
		payments.POST("/momo/ipn", h.MomoIPN)        // POST /v1/payments/momo/ipn
		payments.GET("/bank/return", h.BankReturn)   // GET /v1/payments/bank/return
	}
}

// =====================================================
// VNPAY
// =====================================================

// VNPayReturn handles the browser redirect after payment. The same
// reconciliation runs here as on the IPN; whichever lands first wins
// and the loser is a no-op.
func (h *WebhookHandler) VNPayReturn(c *gin.Context) {
	var cb model.VNPayCallbackRequest
	if err := c.ShouldBindQuery(&cb); err != nil {
		response.BadRequest(c, "Invalid VNPay callback parameters")
		return
	}

	result, err := h.paymentService.HandleVNPayCallback(c.Request.Context(), cb)
	if err != nil {
		h.handleCallbackError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// VNPayIPN answers in VNPay's own dialect. Once the signature has
// verified, the response is "00" even when reconciliation fails
// internally: a gateway retry cannot fix our database, and the
// webhook retry job replays the logged payload instead.
func (h *WebhookHandler) VNPayIPN(c *gin.Context) {
	var cb model.VNPayCallbackRequest
	if err := c.ShouldBindQuery(&cb); err != nil {
		c.JSON(http.StatusOK, gin.H{"RspCode": "99", "Message": "Invalid parameters"})
		return
	}

	_, err := h.paymentService.HandleVNPayCallback(c.Request.Context(), cb)
	if err != nil {
		if errors.Is(err, model.ErrSignatureInvalid) {
			c.JSON(http.StatusOK, gin.H{"RspCode": "97", "Message": "Invalid signature"})
			return
		}
		logger.Error("vnpay ipn reconciliation failed", err)
	}

	c.JSON(http.StatusOK, gin.H{"RspCode": "00", "Message": "Confirm Success"})
}

// =====================================================
// MOMO
// =====================================================

func (h *WebhookHandler) MomoReturn(c *gin.Context) {
	var cb model.MomoCallbackRequest
	if err := c.ShouldBindQuery(&cb); err != nil {
		response.BadRequest(c, "Invalid MoMo callback parameters")
		return
	}

	result, err := h.paymentService.HandleMomoCallback(c.Request.Context(), cb)
	if err != nil {
		h.handleCallbackError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// MomoIPN acknowledges with 204 as MoMo expects. Same contract as the
// VNPay IPN: post-signature failures are acknowledged and replayed
// later from the audit log.
func (h *WebhookHandler) MomoIPN(c *gin.Context) {
	var cb model.MomoCallbackRequest
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"resultCode": 99, "message": "Invalid payload"})
		return
	}

	_, err := h.paymentService.HandleMomoCallback(c.Request.Context(), cb)
	if err != nil {
		if errors.Is(err, model.ErrSignatureInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"resultCode": 97, "message": "Invalid signature"})
			return
		}
		logger.Error("momo ipn reconciliation failed", err)
	}

	c.Status(http.StatusNoContent)
}

// =====================================================
// BANK TRANSFER
// =====================================================

// BankReturn confirms a mock bank transfer. There is no separate IPN;
// the signed return doubles as the settlement notification.
func (h *WebhookHandler) BankReturn(c *gin.Context) {
	var cb model.BankCallbackRequest
	if err := c.ShouldBindQuery(&cb); err != nil {
		response.BadRequest(c, "Invalid bank callback parameters")
		return
	}

	result, err := h.paymentService.HandleBankCallback(c.Request.Context(), cb)
	if err != nil {
		h.handleCallbackError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// HELPERS
// =====================================================

func (h *WebhookHandler) handleCallbackError(c *gin.Context, err error) {
	var payErr *model.PaymentError

	switch {
	case errors.Is(err, model.ErrSignatureInvalid):
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeSignatureInvalid, "Invalid signature")
	case errors.Is(err, model.ErrSettlementConflict):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeSettlementConflict, "Payment already settled with a different outcome")
	case errors.As(err, &payErr) && payErr.Code == model.ErrCodeValidation:
		response.ErrorResponse(c, http.StatusBadRequest, payErr.Code, payErr.Message)
	default:
		logger.Error("payment callback error", err)
		response.InternalServerError(c, "Something went wrong")
	}
}
