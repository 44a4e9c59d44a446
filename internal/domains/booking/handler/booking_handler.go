package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotelbooking-backend/internal/domains/booking/model"
	"hotelbooking-backend/internal/domains/booking/service"
	"hotelbooking-backend/internal/infrastructure/cache"
	"hotelbooking-backend/internal/shared/response"
	"hotelbooking-backend/pkg/logger"
)

// availabilityCacheTTL keeps the snapshot fresh enough that a stale
// positive is caught by the insert-time re-check.
const availabilityCacheTTL = 30 * time.Second

// =====================================================
// BOOKING HANDLER
// =====================================================

type BookingHandler struct {
	bookingService service.BookingService
	cache          *cache.RedisCache
}

// NewBookingHandler accepts a nil cache; availability is then computed
// on every request.
func NewBookingHandler(bookingService service.BookingService, redisCache *cache.RedisCache) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, cache: redisCache}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterRoutes registers availability and booking routes. The caller
// wraps the groups with auth/admin middleware.
func (h *BookingHandler) RegisterRoutes(public, protected, admin *gin.RouterGroup) {
	public.GET("/availability", h.CheckAvailability) // GET /v1/availability

	bookings := protected.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)            // POST /v1/bookings
		bookings.GET("", h.ListBookings)              // GET /v1/bookings?page=1&limit=20&status=pending
		bookings.GET("/:id", h.GetBooking)            // GET /v1/bookings/:id
		bookings.POST("/:id/cancel", h.CancelBooking) // POST /v1/bookings/:id/cancel
	}

	adminBookings := admin.Group("/bookings")
	{
		adminBookings.PATCH("/:id/status", h.UpdateBookingStatus)      // PATCH /v1/admin/bookings/:id/status
		adminBookings.PATCH("/:id/refund-status", h.UpdateRefundStatus) // PATCH /v1/admin/bookings/:id/refund-status
	}
}

// =====================================================
// AVAILABILITY
// =====================================================

func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Query("hotel_id"))
	if err != nil {
		response.BadRequest(c, "hotel_id must be a valid UUID")
		return
	}
	roomTypeID, err := uuid.Parse(c.Query("room_type_id"))
	if err != nil {
		response.BadRequest(c, "room_type_id must be a valid UUID")
		return
	}
	checkIn, err := time.Parse("2006-01-02", c.Query("check_in"))
	if err != nil {
		response.BadRequest(c, "check_in must be YYYY-MM-DD")
		return
	}
	checkOut, err := time.Parse("2006-01-02", c.Query("check_out"))
	if err != nil {
		response.BadRequest(c, "check_out must be YYYY-MM-DD")
		return
	}
	if !checkOut.After(checkIn) {
		response.BadRequest(c, "check_out must be after check_in")
		return
	}

	cacheKey := fmt.Sprintf("availability:%s:%s:%s:%s",
		hotelID, roomTypeID, checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"))

	if h.cache != nil {
		if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil && cached != "" {
			var avail model.Availability
			if err := json.Unmarshal([]byte(cached), &avail); err == nil {
				response.Success(c, http.StatusOK, avail)
				return
			}
		}
	}

	avail, err := h.bookingService.CheckAvailability(c.Request.Context(), hotelID, roomTypeID, checkIn, checkOut)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if h.cache != nil {
		if bytes, err := json.Marshal(avail); err == nil {
			if err := h.cache.Set(c.Request.Context(), cacheKey, string(bytes), availabilityCacheTTL); err != nil {
				logger.Error("failed to cache availability snapshot", err)
			}
		}
	}

	response.Success(c, http.StatusOK, avail)
}

// =====================================================
// CREATE BOOKING
// =====================================================

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, booking)
}

// =====================================================
// READS
// =====================================================

func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Booking ID must be a valid UUID")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), id, userID, isAdmin(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, bookings, &response.Meta{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	})
}

// =====================================================
// CANCELLATION
// =====================================================

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Booking ID must be a valid UUID")
		return
	}

	// Body is optional for cancellation.
	var req model.CancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

// =====================================================
// ADMIN
// =====================================================

func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Booking ID must be a valid UUID")
		return
	}

	var req model.AdminUpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.bookingService.UpdateBookingStatus(c.Request.Context(), id, req.BookingStatus); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking_status": req.BookingStatus})
}

func (h *BookingHandler) UpdateRefundStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Booking ID must be a valid UUID")
		return
	}

	var req model.UpdateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.bookingService.UpdateRefundStatus(c.Request.Context(), id, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"refund_status": req.Status})
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

func (h *BookingHandler) handleServiceError(c *gin.Context, err error) {
	var bkErr *model.BookingError

	switch {
	case errors.As(err, &bkErr):
		switch bkErr.Code {
		case model.ErrCodeValidation:
			response.ErrorResponse(c, http.StatusBadRequest, bkErr.Code, bkErr.Message)
		case model.ErrCodeNoAvailability,
			model.ErrCodeDepositRequired,
			model.ErrCodeActiveBookingElse,
			model.ErrCodeCancellationBlocked,
			model.ErrCodeCancellationTooLate:
			// Policy rejections carry the decision so the client can
			// offer a remediation path.
			response.ErrorWithDetails(c, http.StatusBadRequest, bkErr.Code, bkErr.Message, bkErr.Decision)
		case model.ErrCodeInvalidState:
			response.ErrorResponse(c, http.StatusBadRequest, bkErr.Code, bkErr.Message)
		case model.ErrCodeRoomTypeNotFound:
			response.ErrorResponse(c, http.StatusNotFound, bkErr.Code, bkErr.Message)
		default:
			logger.Error("booking handler error", err)
			response.InternalServerError(c, "Something went wrong")
		}
	case errors.Is(err, model.ErrBookingNotFound):
		response.NotFound(c, "Booking not found")
	case errors.Is(err, model.ErrRoomTypeNotFound):
		response.NotFound(c, "Room type not found")
	case errors.Is(err, model.ErrNotOwner):
		response.Forbidden(c, "You do not have access to this booking")
	default:
		logger.Error("booking handler error", err)
		response.InternalServerError(c, "Something went wrong")
	}
}
