package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	bookingModel "hotelbooking-backend/internal/domains/booking/model"
	"hotelbooking-backend/internal/domains/payment/gateway"
	"hotelbooking-backend/internal/domains/payment/model"
)

// =====================================================
// MOCKS
// =====================================================

type MockWebhookRepository struct {
	mock.Mock
}

func (m *MockWebhookRepository) Insert(ctx context.Context, wl *model.WebhookLog) error {
	args := m.Called(ctx, wl)
	return args.Error(0)
}

func (m *MockWebhookRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWebhookRepository) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockWebhookRepository) ListUnprocessed(ctx context.Context, limit, maxRetries int) ([]model.WebhookLog, error) {
	args := m.Called(ctx, limit, maxRetries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WebhookLog), args.Error(1)
}

type MockConfirmationEngine struct {
	mock.Mock
}

func (m *MockConfirmationEngine) ConfirmIfEligible(ctx context.Context, settlement model.Settlement) (*model.ConfirmationResult, error) {
	args := m.Called(ctx, settlement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfirmationResult), args.Error(1)
}

type MockVNPayGateway struct {
	mock.Mock
}

func (m *MockVNPayGateway) CreatePaymentURL(ctx context.Context, req gateway.PaymentRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockVNPayGateway) VerifySignature(cb model.VNPayCallbackRequest) bool {
	args := m.Called(cb)
	return args.Bool(0)
}

type MockMomoGateway struct {
	mock.Mock
}

func (m *MockMomoGateway) CreatePaymentURL(ctx context.Context, req gateway.PaymentRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockMomoGateway) VerifySignature(cb model.MomoCallbackRequest) bool {
	args := m.Called(cb)
	return args.Bool(0)
}

type MockBankGateway struct {
	mock.Mock
}

func (m *MockBankGateway) CreateInstructions(req gateway.PaymentRequest) *model.BankInstructions {
	args := m.Called(req)
	return args.Get(0).(*model.BankInstructions)
}

func (m *MockBankGateway) VerifySignature(cb model.BankCallbackRequest) bool {
	args := m.Called(cb)
	return args.Bool(0)
}

type paymentFixture struct {
	attempts *MockAttemptRepository
	webhooks *MockWebhookRepository
	engine   *MockConfirmationEngine
	bookings *MockBookingService
	vnpay    *MockVNPayGateway
	momo     *MockMomoGateway
	bank     *MockBankGateway
	svc      *paymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		attempts: new(MockAttemptRepository),
		webhooks: new(MockWebhookRepository),
		engine:   new(MockConfirmationEngine),
		bookings: new(MockBookingService),
		vnpay:    new(MockVNPayGateway),
		momo:     new(MockMomoGateway),
		bank:     new(MockBankGateway),
	}
	f.svc = NewPaymentService(
		f.attempts, f.webhooks, f.engine, f.bookings, f.vnpay, f.momo, f.bank,
	).(*paymentService)
	f.svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	}
	return f
}

// =====================================================
// CREATE PAYMENT
// =====================================================

func TestCreatePayment_ForExistingBooking(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	bookingID := uuid.New()
	idStr := bookingID.String()

	booking := confirmedBooking(bookingID)
	booking.UserID = userID

	f.bookings.On("GetBooking", mock.Anything, bookingID, userID, false).Return(booking, nil)
	f.attempts.On("RecordAttempt", mock.Anything, mock.MatchedBy(func(a *model.PaymentAttempt) bool {
		return a.BookingRef != nil && *a.BookingRef == bookingID && a.ExtraData != nil
	})).Return(nil)
	f.vnpay.On("CreatePaymentURL", mock.Anything, mock.Anything).
		Return("https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?signed=1", nil)

	resp, err := f.svc.CreatePayment(context.Background(), userID, &model.CreatePaymentRequest{
		BookingID: &idStr,
		Gateway:   model.GatewayVNPay,
		Amount:    decimal.NewFromInt(500000),
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.OrderID, "BOOKING_"+idStr+"_"))
	assert.NotEmpty(t, resp.PaymentURL)
	assert.Nil(t, resp.BankInstructions)
}

func TestCreatePayment_BankTransferWrapsOrderID(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()

	f.attempts.On("RecordAttempt", mock.Anything, mock.Anything).Return(nil)
	f.bank.On("CreateInstructions", mock.MatchedBy(func(req gateway.PaymentRequest) bool {
		return strings.HasPrefix(req.OrderID, "BANK_")
	})).Return(&model.BankInstructions{
		AccountNumber:   "0123456789",
		BankName:        "Vietcombank",
		Amount:          decimal.NewFromInt(1000000),
		TransferContent: "BANK_1788264000000_BOOKING_x",
	})

	resp, err := f.svc.CreatePayment(context.Background(), userID, &model.CreatePaymentRequest{
		Gateway: model.GatewayBankTransfer,
		Amount:  decimal.NewFromInt(1000000),
		Snapshot: &model.BookingSnapshot{
			HotelID:    uuid.New(),
			RoomTypeID: uuid.New(),
			FinalPrice: decimal.NewFromInt(1000000),
		},
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.OrderID, "BANK_"))
	require.NotNil(t, resp.BankInstructions)
	assert.Empty(t, resp.PaymentURL)

	// The wrapped id must still resolve to the inner reservation reference.
	ref, parseErr := model.ParseOrderID(resp.OrderID)
	require.NoError(t, parseErr)
	assert.NotNil(t, ref.BookingID)
}

func TestCreatePayment_DuplicateOrderID(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()

	f.attempts.On("RecordAttempt", mock.Anything, mock.Anything).Return(model.ErrDuplicateOrderID)

	_, err := f.svc.CreatePayment(context.Background(), userID, &model.CreatePaymentRequest{
		Gateway:  model.GatewayMomo,
		Amount:   decimal.NewFromInt(500000),
		Snapshot: &model.BookingSnapshot{HotelID: uuid.New(), RoomTypeID: uuid.New()},
	})

	var payErr *model.PaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, model.ErrCodeDuplicateOrder, payErr.Code)
	f.momo.AssertNotCalled(t, "CreatePaymentURL", mock.Anything, mock.Anything)
}

func TestCreatePayment_SomeoneElsesBooking(t *testing.T) {
	f := newPaymentFixture()
	userID := uuid.New()
	bookingID := uuid.New()
	idStr := bookingID.String()

	f.bookings.On("GetBooking", mock.Anything, bookingID, userID, false).
		Return(nil, bookingModel.ErrNotOwner)

	_, err := f.svc.CreatePayment(context.Background(), userID, &model.CreatePaymentRequest{
		BookingID: &idStr,
		Gateway:   model.GatewayVNPay,
		Amount:    decimal.NewFromInt(500000),
	})

	var payErr *model.PaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, model.ErrCodeBookingNotFound, payErr.Code)
	f.attempts.AssertNotCalled(t, "RecordAttempt", mock.Anything, mock.Anything)
}

// =====================================================
// CALLBACKS
// =====================================================

func TestHandleVNPayCallback_BadSignatureMutatesNothing(t *testing.T) {
	f := newPaymentFixture()

	f.vnpay.On("VerifySignature", mock.Anything).Return(false)
	f.webhooks.On("Insert", mock.Anything, mock.MatchedBy(func(wl *model.WebhookLog) bool {
		return wl.IsValid != nil && !*wl.IsValid
	})).Return(nil)

	_, err := f.svc.HandleVNPayCallback(context.Background(), model.VNPayCallbackRequest{
		VnpTxnRef:     "BOOKING_x_1",
		VnpSecureHash: "tampered",
	})

	require.ErrorIs(t, err, model.ErrSignatureInvalid)
	f.attempts.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.engine.AssertNotCalled(t, "ConfirmIfEligible", mock.Anything, mock.Anything)
	// Tampered payloads still leave an audit row, flagged invalid.
	f.webhooks.AssertExpectations(t)
}

func TestHandleVNPayCallback_SuccessSettlesAndConfirms(t *testing.T) {
	f := newPaymentFixture()
	orderID := model.BuildBookingOrderID(uuid.New(), time.Now())

	f.vnpay.On("VerifySignature", mock.Anything).Return(true)
	f.webhooks.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.attempts.On("Settle", mock.Anything, orderID, model.AttemptStatusCompleted, mock.Anything).Return(nil)
	f.engine.On("ConfirmIfEligible", mock.Anything, mock.MatchedBy(func(s model.Settlement) bool {
		return s.OrderID == orderID && s.Succeeded && s.Amount.Equal(decimal.NewFromInt(500000))
	})).Return(&model.ConfirmationResult{Confirmed: true, PaidFraction: decimal.NewFromFloat(0.5)}, nil)
	f.webhooks.On("MarkProcessed", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.HandleVNPayCallback(context.Background(), model.VNPayCallbackRequest{
		VnpTxnRef:        orderID,
		VnpAmount:        "50000000", // gateway units, x100
		VnpResponseCode:  "00",
		VnpTransactionNo: "14214047",
		VnpSecureHash:    "valid",
	})

	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	require.NotNil(t, result.Confirmation)
	assert.True(t, result.Confirmation.Confirmed)
	f.webhooks.AssertCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestHandleVNPayCallback_DeclinedSettlesFailedOnly(t *testing.T) {
	f := newPaymentFixture()
	orderID := model.BuildBookingOrderID(uuid.New(), time.Now())

	f.vnpay.On("VerifySignature", mock.Anything).Return(true)
	f.webhooks.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.attempts.On("Settle", mock.Anything, orderID, model.AttemptStatusFailed, mock.Anything).Return(nil)
	f.webhooks.On("MarkProcessed", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.HandleVNPayCallback(context.Background(), model.VNPayCallbackRequest{
		VnpTxnRef:       orderID,
		VnpAmount:       "50000000",
		VnpResponseCode: "24", // customer cancelled
		VnpSecureHash:   "valid",
	})

	require.NoError(t, err)
	assert.False(t, result.Succeeded)
	assert.Nil(t, result.Confirmation)
	f.engine.AssertNotCalled(t, "ConfirmIfEligible", mock.Anything, mock.Anything)
}

func TestHandleMomoCallback_SettlementConflictSurfaces(t *testing.T) {
	f := newPaymentFixture()
	orderID := model.BuildBookingOrderID(uuid.New(), time.Now())

	f.momo.On("VerifySignature", mock.Anything).Return(true)
	f.webhooks.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.attempts.On("Settle", mock.Anything, orderID, model.AttemptStatusCompleted, mock.Anything).
		Return(model.NewSettlementConflictError(orderID, model.AttemptStatusFailed, model.AttemptStatusCompleted))
	f.webhooks.On("MarkError", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.HandleMomoCallback(context.Background(), model.MomoCallbackRequest{
		OrderID:    orderID,
		Amount:     500000,
		ResultCode: 0,
		Signature:  "valid",
	})

	require.ErrorIs(t, err, model.ErrSettlementConflict)
	f.webhooks.AssertCalled(t, "MarkError", mock.Anything, mock.Anything, mock.Anything)
	f.webhooks.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}

func TestHandleBankCallback_Success(t *testing.T) {
	f := newPaymentFixture()
	orderID := model.BuildBankOrderID(time.Now(), model.BuildBookingOrderID(uuid.New(), time.Now()))

	f.bank.On("VerifySignature", mock.Anything).Return(true)
	f.webhooks.On("Insert", mock.Anything, mock.Anything).Return(nil)
	f.attempts.On("Settle", mock.Anything, orderID, model.AttemptStatusCompleted, mock.Anything).Return(nil)
	f.engine.On("ConfirmIfEligible", mock.Anything, mock.Anything).
		Return(&model.ConfirmationResult{Confirmed: true, PaidFraction: decimal.NewFromInt(1)}, nil)
	f.webhooks.On("MarkProcessed", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.HandleBankCallback(context.Background(), model.BankCallbackRequest{
		OrderID:   orderID,
		Amount:    "1000000",
		Status:    "success",
		TxnID:     "FT26092800001",
		Timestamp: "1788264000",
		Signature: "valid",
	})

	require.NoError(t, err)
	assert.True(t, result.Succeeded)
	require.NotNil(t, result.Confirmation)
}

// =====================================================
// STATUS
// =====================================================

func TestGetPaymentStatus_HidesOtherUsersAttempts(t *testing.T) {
	f := newPaymentFixture()
	owner := uuid.New()
	stranger := uuid.New()

	attempt := &model.PaymentAttempt{
		OrderID: "BOOKING_x_1",
		UserID:  owner,
		Gateway: model.GatewayVNPay,
		Amount:  decimal.NewFromInt(500000),
		Status:  model.AttemptStatusPending,
	}
	f.attempts.On("GetByOrderID", mock.Anything, "BOOKING_x_1").Return(attempt, nil)

	_, err := f.svc.GetPaymentStatus(context.Background(), "BOOKING_x_1", stranger, false)
	require.ErrorIs(t, err, model.ErrAttemptNotFound)

	status, err := f.svc.GetPaymentStatus(context.Background(), "BOOKING_x_1", stranger, true)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusPending, status.Status)
}

// =====================================================
// WEBHOOK RETRY
// =====================================================

func TestRetryUnprocessedWebhooks_ReplaysStoredBody(t *testing.T) {
	f := newPaymentFixture()
	orderID := model.BuildBookingOrderID(uuid.New(), time.Now())
	logID := uuid.New()

	f.webhooks.On("ListUnprocessed", mock.Anything, model.WebhookRetryBatchSize, webhookMaxRetries).
		Return([]model.WebhookLog{{
			ID:      logID,
			Gateway: model.GatewayBankTransfer,
			Body: map[string]interface{}{
				"order_id": orderID,
				"amount":   "1000000",
				"status":   "success",
				"txn_id":   "FT26092800001",
			},
		}}, nil)
	f.attempts.On("Settle", mock.Anything, orderID, model.AttemptStatusCompleted, mock.Anything).Return(nil)
	f.engine.On("ConfirmIfEligible", mock.Anything, mock.Anything).
		Return(&model.ConfirmationResult{Confirmed: true}, nil)
	f.webhooks.On("MarkProcessed", mock.Anything, logID).Return(nil)

	retried, err := f.svc.RetryUnprocessedWebhooks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, retried)
	f.webhooks.AssertCalled(t, "MarkProcessed", mock.Anything, logID)
}

func TestRetryUnprocessedWebhooks_FailureBumpsRetryCount(t *testing.T) {
	f := newPaymentFixture()
	orderID := model.BuildBookingOrderID(uuid.New(), time.Now())
	logID := uuid.New()

	f.webhooks.On("ListUnprocessed", mock.Anything, model.WebhookRetryBatchSize, webhookMaxRetries).
		Return([]model.WebhookLog{{
			ID:      logID,
			Gateway: model.GatewayMomo,
			Body: map[string]interface{}{
				"orderId":    orderID,
				"amount":     float64(500000),
				"resultCode": float64(0),
			},
		}}, nil)
	f.attempts.On("Settle", mock.Anything, orderID, model.AttemptStatusCompleted, mock.Anything).
		Return(errors.New("connection refused"))
	f.webhooks.On("MarkError", mock.Anything, logID, mock.Anything).Return(nil)

	retried, err := f.svc.RetryUnprocessedWebhooks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, retried)
	f.webhooks.AssertCalled(t, "MarkError", mock.Anything, logID, mock.Anything)
	f.webhooks.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
}
