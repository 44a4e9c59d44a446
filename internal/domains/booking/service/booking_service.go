package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"hotelbooking-backend/internal/domains/booking/model"
	"hotelbooking-backend/internal/domains/booking/repository"
	"hotelbooking-backend/internal/domains/catalog"
	"hotelbooking-backend/internal/shared"
	"hotelbooking-backend/pkg/logger"
)

var depositFraction = decimal.NewFromFloat(model.DepositFraction)

type bookingService struct {
	repo    repository.BookingRepository
	catalog catalog.HotelRoomCatalog
	asynq   *asynq.Client

	// now is swappable for boundary tests around the 24h window.
	now func() time.Time
}

func NewBookingService(repo repository.BookingRepository, cat catalog.HotelRoomCatalog, asynqClient *asynq.Client) BookingService {
	return &bookingService{
		repo:    repo,
		catalog: cat,
		asynq:   asynqClient,
		now:     time.Now,
	}
}

// =====================================================
// AVAILABILITY
// =====================================================

func (s *bookingService) CheckAvailability(ctx context.Context, hotelID, roomTypeID uuid.UUID, checkIn, checkOut time.Time) (*model.Availability, error) {
	// Step 1: Resolve the room type and make sure it belongs to the hotel
	rt, err := s.catalog.GetRoomType(ctx, roomTypeID)
	if err != nil {
		if errors.Is(err, catalog.ErrRoomTypeNotFound) {
			return nil, model.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to resolve room type: %w", err)
	}
	if rt.HotelID != hotelID {
		return nil, model.ErrRoomTypeNotFound
	}

	// Step 2: Physical inventory
	total, err := s.catalog.GetPhysicalRoomCount(ctx, hotelID, roomTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count physical rooms: %w", err)
	}

	// Step 3: Rooms held by blocking bookings over the half-open range
	booked, err := s.repo.CountBookedRooms(ctx, hotelID, roomTypeID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	return &model.Availability{
		HotelID:    hotelID,
		RoomTypeID: roomTypeID,
		Total:      total,
		Booked:     booked,
		Available:  total - booked,
	}, nil
}

// =====================================================
// ADMISSION GUARD
// =====================================================

// EvaluateAdmission enforces "one active hotel relationship per user".
// The conflict window is anchored to today, not to the requested stay,
// so far-future spam reservations are still blocked.
func (s *bookingService) EvaluateAdmission(ctx context.Context, userID, hotelID uuid.UUID, req *model.CreateBookingRequest) (*model.Decision, error) {
	today := truncateToDay(s.now())

	conflicts, err := s.repo.ListConflicting(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	if len(conflicts) == 0 {
		return &model.Decision{Allow: true}, nil
	}

	// Same-hotel conflicts take precedence: a second room at the hotel
	// the user is already committed to is allowed with a deposit.
	for _, c := range conflicts {
		if c.HotelID == hotelID {
			if req.PaymentMethod != model.PaymentMethodCash && meetsDeposit(req.PaymentAmount, req.FinalPriceAmount()) {
				return &model.Decision{Allow: true}, nil
			}
			return &model.Decision{
				Allow:                false,
				Reason:               "additional booking at this hotel requires a deposit",
				RequiresPayment:      true,
				MinPaymentPercentage: model.MinDepositPercentage,
			}, nil
		}
	}

	c := conflicts[0]
	checkOut := c.CheckOutDate
	return &model.Decision{
		Allow:             false,
		Reason:            "active booking at another hotel",
		ConflictHotelName: c.HotelName,
		ConflictCheckOut:  &checkOut,
	}, nil
}

// meetsDeposit reports whether amount/total >= the deposit fraction.
// Compared as amount >= total*fraction to avoid division.
func meetsDeposit(amount, total decimal.Decimal) bool {
	if total.IsZero() {
		return false
	}
	return amount.GreaterThanOrEqual(total.Mul(depositFraction))
}

// =====================================================
// CREATE
// =====================================================

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	// Step 1: Validate input
	if err := req.Validate(); err != nil {
		return nil, model.NewBookingError(model.ErrCodeValidation, err.Error(), err)
	}

	// Step 2: Admission policy, before any inventory work
	decision, err := s.EvaluateAdmission(ctx, userID, req.HotelID, req)
	if err != nil {
		return nil, err
	}
	if !decision.Allow {
		if decision.RequiresPayment {
			return nil, model.NewDepositRequiredError(decision)
		}
		return nil, model.NewActiveBookingElsewhereError(decision)
	}

	return s.create(ctx, userID, req)
}

func (s *bookingService) CreateFromSnapshot(ctx context.Context, userID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewBookingError(model.ErrCodeValidation, err.Error(), err)
	}
	return s.create(ctx, userID, req)
}

func (s *bookingService) create(ctx context.Context, userID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	// Step 1: Resolve room type and physical inventory
	rt, err := s.catalog.GetRoomType(ctx, req.RoomTypeID)
	if err != nil {
		if errors.Is(err, catalog.ErrRoomTypeNotFound) {
			return nil, model.NewBookingError(model.ErrCodeRoomTypeNotFound, "room type not found", model.ErrRoomTypeNotFound)
		}
		return nil, err
	}
	if rt.HotelID != req.HotelID {
		return nil, model.NewBookingError(model.ErrCodeRoomTypeNotFound, "room type does not belong to hotel", model.ErrRoomTypeNotFound)
	}

	total, err := s.catalog.GetPhysicalRoomCount(ctx, req.HotelID, req.RoomTypeID)
	if err != nil {
		return nil, err
	}

	// Step 2: Build the aggregate. Status is derived from the
	// caller-supplied payment status; the insert itself re-validates
	// availability, this path holds no locks.
	booking := s.buildBooking(userID, req)

	// Step 3: Insert, retrying only on booking-code collisions. The
	// serializable availability re-check lives in the repository.
	for attempt := 0; attempt < model.BookingCodeMaxAttempts; attempt++ {
		booking.BookingCode = generateBookingCode(s.now())

		err = s.repo.CreateWithAvailabilityCheck(ctx, booking, total)
		if err == nil {
			break
		}
		if errors.Is(err, model.ErrBookingCodeConflict) {
			continue
		}
		if errors.Is(err, model.ErrNoAvailability) {
			avail := total // best effort; the exact count raced away
			booked, cntErr := s.repo.CountBookedRooms(ctx, req.HotelID, req.RoomTypeID, req.CheckInDate, req.CheckOutDate)
			if cntErr == nil {
				avail = total - booked
			}
			return nil, model.NewNoAvailabilityError(avail)
		}
		return nil, err
	}
	if errors.Is(err, model.ErrBookingCodeConflict) {
		return nil, model.NewBookingError(model.ErrCodeCodeExhausted, "could not allocate a booking code", model.ErrCodeExhausted)
	}

	// Step 4: Fire-and-forget side effects for paid-at-creation
	// bookings, gated on the same flag the confirmation engine uses so
	// a later gateway callback cannot double-grant. Failures are
	// logged, never returned.
	if booking.PaymentStatus == model.PaymentStatusPaid {
		won, flagErr := s.repo.MarkVipPointsAdded(ctx, booking.ID)
		if flagErr != nil {
			logger.Error("failed to flip loyalty idempotency flag", flagErr)
		} else if won {
			booking.VipPointsAdded = true
			s.enqueueLoyaltyGrant(booking)
			s.enqueueConfirmationEmail(booking)
		}
	}

	logger.Info("booking created", map[string]interface{}{
		"bookingId":   booking.ID.String(),
		"bookingCode": booking.BookingCode,
		"status":      booking.BookingStatus,
	})

	return booking, nil
}

func (s *bookingService) buildBooking(userID uuid.UUID, req *model.CreateBookingRequest) *model.Booking {
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = model.PaymentStatusPending
	}

	bookingStatus := model.BookingStatusPending
	if paymentStatus == model.PaymentStatusPaid || paymentStatus == model.PaymentStatusPartial {
		bookingStatus = model.BookingStatusConfirmed
	}

	return &model.Booking{
		ID:                  uuid.New(),
		UserID:              userID,
		HotelID:             req.HotelID,
		RoomTypeID:          req.RoomTypeID,
		CheckInDate:         req.CheckInDate,
		CheckOutDate:        req.CheckOutDate,
		GuestName:           req.GuestName,
		GuestEmail:          req.GuestEmail,
		GuestPhone:          req.GuestPhone,
		GuestCount:          req.GuestCount,
		RoomCount:           req.RoomCount,
		RoomPrice:           req.RoomPrice,
		Nights:              req.NightCount(),
		Subtotal:            req.SubtotalAmount(),
		Discount:            req.Discount,
		FinalPrice:          req.FinalPriceAmount(),
		PaymentMethod:       req.PaymentMethod,
		BookingStatus:       bookingStatus,
		PaymentStatus:       paymentStatus,
		CancellationAllowed: req.CancellationAllowed,
		RefundStatus:        model.RefundStatusNone,
	}
}

// generateBookingCode returns BOOK-YYYYMMDD-#### with a random 4-digit
// suffix. Uniqueness comes from the database index plus the caller's
// retry loop, not from the generator.
func generateBookingCode(now time.Time) string {
	return fmt.Sprintf("BOOK-%s-%04d", now.Format("20060102"), rand.Intn(10000))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// =====================================================
// READS
// =====================================================

func (s *bookingService) GetBooking(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*model.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && booking.UserID != requesterID {
		return nil, model.ErrNotOwner
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, userID uuid.UUID, req *model.ListBookingsRequest) ([]model.Booking, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByUser(ctx, userID, req.Status, req.Page, req.Limit)
}

// =====================================================
// CANCELLATION
// =====================================================

func (s *bookingService) CancelBooking(ctx context.Context, id, requesterID uuid.UUID, reason string) (*model.Booking, error) {
	// Step 1: Load and check ownership
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != requesterID {
		return nil, model.ErrNotOwner
	}

	// Step 2: Rate-plan flag
	if !booking.CancellationAllowed {
		return nil, model.NewBookingError(model.ErrCodeCancellationBlocked,
			"this rate plan does not allow cancellation", model.ErrCancellationBlocked)
	}

	// Step 3: 24h window. Exactly 24h before check-in is still allowed.
	hoursLeft := booking.HoursUntilCheckIn(s.now())
	if hoursLeft < model.CancellationWindowHours {
		return nil, model.NewCancellationTooLateError(hoursLeft)
	}

	// Step 4: Status precondition, for a readable error before the
	// atomic update repeats the same guard.
	if !booking.CanBeCancelled() {
		return nil, model.NewInvalidStateError(booking.BookingStatus)
	}

	// Step 5: Atomic transition. ErrInvalidState here means a
	// concurrent writer won the race since step 4.
	cancelled, err := s.repo.Cancel(ctx, id, reason, s.now())
	if err != nil {
		if errors.Is(err, model.ErrInvalidState) {
			return nil, model.NewInvalidStateError(booking.BookingStatus)
		}
		return nil, err
	}

	logger.Info("booking cancelled", map[string]interface{}{
		"bookingId": id.String(),
		"reason":    reason,
	})

	return cancelled, nil
}

// =====================================================
// STATUS PRIMITIVES
// =====================================================

func (s *bookingService) UpdateRefundStatus(ctx context.Context, id uuid.UUID, req *model.UpdateRefundStatusRequest) error {
	if err := req.Validate(); err != nil {
		return model.NewBookingError(model.ErrCodeValidation, err.Error(), err)
	}
	return s.repo.UpdateRefundStatus(ctx, id, req.Status, req.Amount, req.TransactionID)
}

func (s *bookingService) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.repo.UpdateBookingStatus(ctx, id, status)
}

func (s *bookingService) SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) error {
	return s.repo.UpdatePaymentStatus(ctx, id, status)
}

func (s *bookingService) ConfirmBooking(ctx context.Context, id uuid.UUID, paymentStatus string) (bool, error) {
	return s.repo.Confirm(ctx, id, paymentStatus)
}

func (s *bookingService) MarkVipPointsAdded(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.MarkVipPointsAdded(ctx, id)
}

// =====================================================
// SIDE EFFECT JOBS
// =====================================================

func (s *bookingService) enqueueLoyaltyGrant(b *model.Booking) {
	if s.asynq == nil {
		return
	}

	payload := shared.GrantLoyaltyPointsPayload{
		BookingID:  b.ID.String(),
		UserID:     b.UserID.String(),
		FinalPrice: b.FinalPrice.String(),
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal loyalty payload", err)
		return
	}

	task := asynq.NewTask(shared.TypeGrantLoyaltyPoints, bytes)
	if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueCritical)); err != nil {
		logger.Error("failed to enqueue loyalty grant", err)
	}
}

func (s *bookingService) enqueueConfirmationEmail(b *model.Booking) {
	if s.asynq == nil {
		return
	}

	payload := shared.BookingConfirmationPayload{
		BookingID:    b.ID.String(),
		BookingCode:  b.BookingCode,
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
		CheckInDate:  b.CheckInDate,
		CheckOutDate: b.CheckOutDate,
		FinalPrice:   b.FinalPrice.String(),
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal confirmation email payload", err)
		return
	}

	task := asynq.NewTask(shared.TypeSendBookingConfirmation, bytes)
	if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueEmail)); err != nil {
		logger.Error("failed to enqueue confirmation email", err)
	}
}
