package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	bookingModel "hotelbooking-backend/internal/domains/booking/model"
	"hotelbooking-backend/internal/domains/payment/model"
)

// =====================================================
// MOCKS
// =====================================================

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) RecordAttempt(ctx context.Context, attempt *model.PaymentAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByOrderID(ctx context.Context, orderID string) (*model.PaymentAttempt, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentAttempt), args.Error(1)
}

func (m *MockAttemptRepository) Settle(ctx context.Context, orderID, status string, gatewayTxnID *string) error {
	args := m.Called(ctx, orderID, status, gatewayTxnID)
	return args.Error(0)
}

func (m *MockAttemptRepository) SumCompleted(ctx context.Context, bookingRef uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, bookingRef)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAttemptRepository) LinkBooking(ctx context.Context, orderID string, bookingID uuid.UUID) error {
	args := m.Called(ctx, orderID, bookingID)
	return args.Error(0)
}

func (m *MockAttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.PaymentAttempt, int, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.PaymentAttempt), args.Int(1), args.Error(2)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, hotelID, roomTypeID uuid.UUID, checkIn, checkOut time.Time) (*bookingModel.Availability, error) {
	args := m.Called(ctx, hotelID, roomTypeID, checkIn, checkOut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingModel.Availability), args.Error(1)
}

func (m *MockBookingService) EvaluateAdmission(ctx context.Context, userID, hotelID uuid.UUID, req *bookingModel.CreateBookingRequest) (*bookingModel.Decision, error) {
	args := m.Called(ctx, userID, hotelID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingModel.Decision), args.Error(1)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *bookingModel.CreateBookingRequest) (*bookingModel.Booking, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingModel.Booking), args.Error(1)
}

func (m *MockBookingService) CreateFromSnapshot(ctx context.Context, userID uuid.UUID, req *bookingModel.CreateBookingRequest) (*bookingModel.Booking, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingModel.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*bookingModel.Booking, error) {
	args := m.Called(ctx, id, requesterID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingModel.Booking), args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context, userID uuid.UUID, req *bookingModel.ListBookingsRequest) ([]bookingModel.Booking, int, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]bookingModel.Booking), args.Int(1), args.Error(2)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, id, requesterID uuid.UUID, reason string) (*bookingModel.Booking, error) {
	args := m.Called(ctx, id, requesterID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingModel.Booking), args.Error(1)
}

func (m *MockBookingService) UpdateRefundStatus(ctx context.Context, id uuid.UUID, req *bookingModel.UpdateRefundStatusRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *MockBookingService) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingService) SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, id uuid.UUID, paymentStatus string) (bool, error) {
	args := m.Called(ctx, id, paymentStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingService) MarkVipPointsAdded(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// =====================================================
// HELPERS
// =====================================================

func settledAttempt(orderID string, bookingID uuid.UUID, amount int64, total int64) *model.PaymentAttempt {
	ref := bookingID
	return &model.PaymentAttempt{
		OrderID:    orderID,
		BookingRef: &ref,
		UserID:     uuid.New(),
		Gateway:    model.GatewayVNPay,
		Amount:     decimal.NewFromInt(amount),
		Status:     model.AttemptStatusCompleted,
		ExtraData: &model.BookingSnapshot{
			BookingID:  &ref,
			FinalPrice: decimal.NewFromInt(total),
		},
	}
}

func confirmedBooking(id uuid.UUID) *bookingModel.Booking {
	return &bookingModel.Booking{
		ID:            id,
		UserID:        uuid.New(),
		BookingStatus: bookingModel.BookingStatusPending,
		PaymentStatus: bookingModel.PaymentStatusPending,
		FinalPrice:    decimal.NewFromInt(1000000),
	}
}

// =====================================================
// TESTS
// =====================================================

func TestConfirmIfEligible_HalfPaidConfirmsPartial(t *testing.T) {
	attempts := new(MockAttemptRepository)
	bookings := new(MockBookingService)
	engine := NewConfirmationEngine(attempts, bookings, nil)

	bookingID := uuid.New()
	orderID := model.BuildBookingOrderID(bookingID, time.Now())
	attempt := settledAttempt(orderID, bookingID, 500000, 1000000)

	attempts.On("GetByOrderID", mock.Anything, orderID).Return(attempt, nil)
	bookings.On("GetBooking", mock.Anything, bookingID, attempt.UserID, true).
		Return(confirmedBooking(bookingID), nil)
	attempts.On("SumCompleted", mock.Anything, bookingID).
		Return(decimal.NewFromInt(500000), nil)
	bookings.On("ConfirmBooking", mock.Anything, bookingID, bookingModel.PaymentStatusPartial).Return(true, nil)
	bookings.On("MarkVipPointsAdded", mock.Anything, bookingID).Return(true, nil)

	result, err := engine.ConfirmIfEligible(context.Background(), model.Settlement{
		OrderID: orderID, Amount: decimal.NewFromInt(500000), Succeeded: true, Gateway: model.GatewayVNPay,
	})

	require.NoError(t, err)
	assert.True(t, result.Confirmed)
	assert.True(t, result.PaidFraction.Equal(decimal.NewFromFloat(0.5)))
	bookings.AssertCalled(t, "ConfirmBooking", mock.Anything, bookingID, bookingModel.PaymentStatusPartial)
}

func TestConfirmIfEligible_BelowDepositDoesNothing(t *testing.T) {
	attempts := new(MockAttemptRepository)
	bookings := new(MockBookingService)
	engine := NewConfirmationEngine(attempts, bookings, nil)

	bookingID := uuid.New()
	orderID := model.BuildBookingOrderID(bookingID, time.Now())
	attempt := settledAttempt(orderID, bookingID, 490000, 1000000)

	attempts.On("GetByOrderID", mock.Anything, orderID).Return(attempt, nil)
	bookings.On("GetBooking", mock.Anything, bookingID, attempt.UserID, true).
		Return(confirmedBooking(bookingID), nil)
	attempts.On("SumCompleted", mock.Anything, bookingID).
		Return(decimal.NewFromInt(490000), nil)

	result, err := engine.ConfirmIfEligible(context.Background(), model.Settlement{
		OrderID: orderID, Succeeded: true,
	})

	require.NoError(t, err)
	assert.False(t, result.Confirmed)
	bookings.AssertNotCalled(t, "ConfirmBooking", mock.Anything, mock.Anything, mock.Anything)
	bookings.AssertNotCalled(t, "MarkVipPointsAdded", mock.Anything, mock.Anything)
}

func TestConfirmIfEligible_DoubleDeliveryGrantsOnce(t *testing.T) {
	attempts := new(MockAttemptRepository)
	bookings := new(MockBookingService)
	engine := NewConfirmationEngine(attempts, bookings, nil)

	bookingID := uuid.New()
	orderID := model.BuildBookingOrderID(bookingID, time.Now())
	attempt := settledAttempt(orderID, bookingID, 500000, 1000000)

	attempts.On("GetByOrderID", mock.Anything, orderID).Return(attempt, nil)
	bookings.On("GetBooking", mock.Anything, bookingID, attempt.UserID, true).
		Return(confirmedBooking(bookingID), nil)
	attempts.On("SumCompleted", mock.Anything, bookingID).
		Return(decimal.NewFromInt(500000), nil)
	bookings.On("ConfirmBooking", mock.Anything, bookingID, bookingModel.PaymentStatusPartial).Return(true, nil)
	// First delivery wins the flag; the duplicate loses it.
	bookings.On("MarkVipPointsAdded", mock.Anything, bookingID).Return(true, nil).Once()
	bookings.On("MarkVipPointsAdded", mock.Anything, bookingID).Return(false, nil)

	settlement := model.Settlement{OrderID: orderID, Succeeded: true}

	first, err := engine.ConfirmIfEligible(context.Background(), settlement)
	require.NoError(t, err)
	second, err := engine.ConfirmIfEligible(context.Background(), settlement)
	require.NoError(t, err)

	assert.True(t, first.Confirmed)
	assert.True(t, second.Confirmed)
	bookings.AssertNumberOfCalls(t, "MarkVipPointsAdded", 2)
}

func TestConfirmIfEligible_SecondAttemptUpgradesToPaid(t *testing.T) {
	attempts := new(MockAttemptRepository)
	bookings := new(MockBookingService)
	engine := NewConfirmationEngine(attempts, bookings, nil)

	bookingID := uuid.New()
	orderID := model.BuildBookingOrderID(bookingID, time.Now())
	attempt := settledAttempt(orderID, bookingID, 500000, 1000000)

	attempts.On("GetByOrderID", mock.Anything, orderID).Return(attempt, nil)
	bookings.On("GetBooking", mock.Anything, bookingID, attempt.UserID, true).
		Return(confirmedBooking(bookingID), nil)
	// Family total now covers the full price.
	attempts.On("SumCompleted", mock.Anything, bookingID).
		Return(decimal.NewFromInt(1000000), nil)
	bookings.On("ConfirmBooking", mock.Anything, bookingID, bookingModel.PaymentStatusPaid).Return(true, nil)
	// Loyalty already granted by the first settlement.
	bookings.On("MarkVipPointsAdded", mock.Anything, bookingID).Return(false, nil)

	result, err := engine.ConfirmIfEligible(context.Background(), model.Settlement{
		OrderID: orderID, Succeeded: true,
	})

	require.NoError(t, err)
	assert.True(t, result.Confirmed)
	assert.True(t, result.PaidFraction.Equal(decimal.NewFromInt(1)))
	bookings.AssertCalled(t, "ConfirmBooking", mock.Anything, bookingID, bookingModel.PaymentStatusPaid)
}

func TestConfirmIfEligible_LateSettlementKeepsCancelledBooking(t *testing.T) {
	attempts := new(MockAttemptRepository)
	bookings := new(MockBookingService)
	engine := NewConfirmationEngine(attempts, bookings, nil)

	bookingID := uuid.New()
	orderID := model.BuildBookingOrderID(bookingID, time.Now())
	attempt := settledAttempt(orderID, bookingID, 500000, 1000000)

	// The user cancelled before the IPN landed; the status guard in
	// ConfirmBooking loses and reports false.
	cancelled := confirmedBooking(bookingID)
	cancelled.BookingStatus = bookingModel.BookingStatusCancelled
	cancelled.RefundStatus = bookingModel.RefundStatusRequested

	attempts.On("GetByOrderID", mock.Anything, orderID).Return(attempt, nil)
	bookings.On("GetBooking", mock.Anything, bookingID, attempt.UserID, true).
		Return(cancelled, nil)
	attempts.On("SumCompleted", mock.Anything, bookingID).
		Return(decimal.NewFromInt(500000), nil)
	bookings.On("ConfirmBooking", mock.Anything, bookingID, bookingModel.PaymentStatusPartial).Return(false, nil)

	result, err := engine.ConfirmIfEligible(context.Background(), model.Settlement{
		OrderID: orderID, Succeeded: true,
	})

	require.NoError(t, err)
	assert.False(t, result.Confirmed)
	assert.True(t, result.PaidFraction.Equal(decimal.NewFromFloat(0.5)))
	require.NotNil(t, result.BookingID)
	assert.Equal(t, bookingID, *result.BookingID)
	bookings.AssertNotCalled(t, "MarkVipPointsAdded", mock.Anything, mock.Anything)
}

func TestConfirmIfEligible_UnknownOrderIsNotAnError(t *testing.T) {
	attempts := new(MockAttemptRepository)
	bookings := new(MockBookingService)
	engine := NewConfirmationEngine(attempts, bookings, nil)

	attempts.On("GetByOrderID", mock.Anything, "ORPHAN").Return(nil, model.ErrAttemptNotFound)

	result, err := engine.ConfirmIfEligible(context.Background(), model.Settlement{OrderID: "ORPHAN"})

	require.NoError(t, err)
	assert.False(t, result.Confirmed)
}

func TestConfirmIfEligible_CreatesBookingFromSnapshot(t *testing.T) {
	attempts := new(MockAttemptRepository)
	bookings := new(MockBookingService)
	engine := NewConfirmationEngine(attempts, bookings, nil)

	userID := uuid.New()
	phantomID := uuid.New() // reference in the order id; no row exists
	orderID := model.BuildBookingOrderID(phantomID, time.Now())

	snapshot := &model.BookingSnapshot{
		UserID:       userID,
		HotelID:      uuid.New(),
		RoomTypeID:   uuid.New(),
		CheckInDate:  time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
		GuestName:    "Nguyen Van A",
		GuestEmail:   "guest@example.com",
		GuestCount:   2,
		RoomCount:    1,
		RoomPrice:    decimal.NewFromInt(500000),
		FinalPrice:   decimal.NewFromInt(1000000),
	}
	attempt := &model.PaymentAttempt{
		OrderID:   orderID,
		UserID:    userID,
		Gateway:   model.GatewayMomo,
		Amount:    decimal.NewFromInt(1000000),
		Status:    model.AttemptStatusCompleted,
		ExtraData: snapshot,
	}

	created := confirmedBooking(uuid.New())
	created.UserID = userID

	attempts.On("GetByOrderID", mock.Anything, orderID).Return(attempt, nil)
	bookings.On("GetBooking", mock.Anything, phantomID, userID, true).
		Return(nil, bookingModel.ErrBookingNotFound)
	bookings.On("CreateFromSnapshot", mock.Anything, userID, mock.MatchedBy(func(req *bookingModel.CreateBookingRequest) bool {
		return req.PaymentStatus == bookingModel.PaymentStatusPaid && req.HotelID == snapshot.HotelID
	})).Return(created, nil)
	attempts.On("LinkBooking", mock.Anything, orderID, created.ID).Return(nil)
	bookings.On("MarkVipPointsAdded", mock.Anything, created.ID).Return(true, nil)

	result, err := engine.ConfirmIfEligible(context.Background(), model.Settlement{
		OrderID: orderID, Succeeded: true,
	})

	require.NoError(t, err)
	assert.True(t, result.Confirmed)
	require.NotNil(t, result.BookingID)
	assert.Equal(t, created.ID, *result.BookingID)
	attempts.AssertCalled(t, "LinkBooking", mock.Anything, orderID, created.ID)
}
