package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bookingModel "hotelbooking-backend/internal/domains/booking/model"
	bookingService "hotelbooking-backend/internal/domains/booking/service"
	"hotelbooking-backend/internal/domains/payment/gateway"
	"hotelbooking-backend/internal/domains/payment/gateway/vnpay"
	"hotelbooking-backend/internal/domains/payment/model"
	"hotelbooking-backend/internal/domains/payment/repository"
	"hotelbooking-backend/pkg/logger"
)

const webhookMaxRetries = 5

type paymentService struct {
	attempts repository.AttemptRepository
	webhooks repository.WebhookRepository
	engine   ConfirmationEngine
	bookings bookingService.BookingService

	vnpayGw gateway.VNPayGateway
	momoGw  gateway.MomoGateway
	bankGw  gateway.BankGateway

	now func() time.Time
}

func NewPaymentService(
	attempts repository.AttemptRepository,
	webhooks repository.WebhookRepository,
	engine ConfirmationEngine,
	bookings bookingService.BookingService,
	vnpayGw gateway.VNPayGateway,
	momoGw gateway.MomoGateway,
	bankGw gateway.BankGateway,
) PaymentService {
	return &paymentService{
		attempts: attempts,
		webhooks: webhooks,
		engine:   engine,
		bookings: bookings,
		vnpayGw:  vnpayGw,
		momoGw:   momoGw,
		bankGw:   bankGw,
		now:      time.Now,
	}
}

// =====================================================
// CREATE PAYMENT
// =====================================================

func (s *paymentService) CreatePayment(ctx context.Context, userID uuid.UUID, req *model.CreatePaymentRequest) (*model.CreatePaymentResponse, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, model.NewPaymentError(model.ErrCodeValidation, err.Error(), err)
	}

	// Step 2: Resolve the booking snapshot and order id
	var (
		snapshot   *model.BookingSnapshot
		bookingRef *uuid.UUID
	)

	if req.BookingID != nil {
		bookingID, err := uuid.Parse(*req.BookingID)
		if err != nil {
			return nil, model.NewPaymentError(model.ErrCodeValidation, "booking_id must be a valid UUID", err)
		}

		booking, err := s.bookings.GetBooking(ctx, bookingID, userID, false)
		if err != nil {
			if errors.Is(err, bookingModel.ErrBookingNotFound) || errors.Is(err, bookingModel.ErrNotOwner) {
				return nil, model.NewPaymentError(model.ErrCodeBookingNotFound, "booking not found", err)
			}
			return nil, err
		}

		snapshot = snapshotFromBooking(booking)
		bookingRef = &bookingID
	} else {
		snapshot = req.Snapshot
		snapshot.UserID = userID
		snapshot.PaymentMethod = req.Gateway
		bookingRef = snapshot.BookingID
	}

	orderID := s.buildOrderID(req.Gateway, bookingRef)

	// Step 3: Record the pending ledger attempt before touching the
	// gateway; an attempt with no URL is harmless, a URL with no
	// attempt is unreconcilable.
	attempt := &model.PaymentAttempt{
		OrderID:    orderID,
		BookingRef: bookingRef,
		UserID:     userID,
		Gateway:    req.Gateway,
		Amount:     req.Amount,
		ExtraData:  snapshot,
	}
	if err := s.attempts.RecordAttempt(ctx, attempt); err != nil {
		if errors.Is(err, model.ErrDuplicateOrderID) {
			return nil, model.NewPaymentError(model.ErrCodeDuplicateOrder, "order id already recorded", err)
		}
		return nil, err
	}

	// Step 4: Ask the gateway
	resp := &model.CreatePaymentResponse{
		OrderID: orderID,
		Gateway: req.Gateway,
		Amount:  req.Amount,
	}
	gwReq := gateway.PaymentRequest{
		OrderID:   orderID,
		Amount:    req.Amount,
		OrderInfo: req.OrderInfo,
	}

	switch req.Gateway {
	case model.GatewayVNPay:
		url, err := s.vnpayGw.CreatePaymentURL(ctx, gwReq)
		if err != nil {
			return nil, model.NewGatewayError(model.GatewayVNPay, err)
		}
		resp.PaymentURL = url

	case model.GatewayMomo:
		url, err := s.momoGw.CreatePaymentURL(ctx, gwReq)
		if err != nil {
			return nil, model.NewGatewayError(model.GatewayMomo, err)
		}
		resp.PaymentURL = url

	case model.GatewayBankTransfer:
		resp.BankInstructions = s.bankGw.CreateInstructions(gwReq)
	}

	logger.Info("payment attempt recorded", map[string]interface{}{
		"orderId": orderID,
		"gateway": req.Gateway,
		"amount":  req.Amount.String(),
	})

	return resp, nil
}

// buildOrderID derives the persisted order-id format. Bank transfers
// wrap the base order id so the statement matcher can recover it.
func (s *paymentService) buildOrderID(gw string, bookingRef *uuid.UUID) string {
	now := s.now()

	ref := uuid.New() // reservation reference allocated at initiation
	if bookingRef != nil {
		ref = *bookingRef
	}
	base := model.BuildBookingOrderID(ref, now)

	if gw == model.GatewayBankTransfer {
		return model.BuildBankOrderID(now, base)
	}
	return base
}

func snapshotFromBooking(b *bookingModel.Booking) *model.BookingSnapshot {
	id := b.ID
	return &model.BookingSnapshot{
		BookingID:           &id,
		UserID:              b.UserID,
		HotelID:             b.HotelID,
		RoomTypeID:          b.RoomTypeID,
		CheckInDate:         b.CheckInDate,
		CheckOutDate:        b.CheckOutDate,
		GuestName:           b.GuestName,
		GuestEmail:          b.GuestEmail,
		GuestPhone:          b.GuestPhone,
		GuestCount:          b.GuestCount,
		RoomCount:           b.RoomCount,
		RoomPrice:           b.RoomPrice,
		Discount:            b.Discount,
		FinalPrice:          b.FinalPrice,
		TotalPrice:          b.FinalPrice,
		PaymentMethod:       b.PaymentMethod,
		CancellationAllowed: b.CancellationAllowed,
	}
}

// =====================================================
// GATEWAY CALLBACKS
// =====================================================

func (s *paymentService) HandleVNPayCallback(ctx context.Context, cb model.VNPayCallbackRequest) (*model.CallbackResult, error) {
	// Step 1: Authenticity, then audit. No state mutation beyond the
	// log on an untrusted payload.
	verified := s.vnpayGw.VerifySignature(cb)
	log := s.auditLog(ctx, model.GatewayVNPay, cb.VnpTxnRef, cb, cb.VnpSecureHash, verified)
	if !verified {
		return nil, model.NewSignatureError(model.GatewayVNPay)
	}

	// Step 2: Normalize
	amount, err := vnpay.ParseAmount(cb.VnpAmount)
	if err != nil {
		s.markFailed(ctx, log, err)
		return nil, model.NewPaymentError(model.ErrCodeValidation, "unparseable VNPay amount", err)
	}

	settlement := model.Settlement{
		OrderID:      cb.VnpTxnRef,
		Amount:       amount,
		Succeeded:    cb.VnpResponseCode == vnpay.ResponseCodeSuccess,
		GatewayTxnID: cb.VnpTransactionNo,
		Gateway:      model.GatewayVNPay,
	}

	result, err := s.reconcile(ctx, settlement, vnpay.GetResponseMessage(cb.VnpResponseCode))
	s.finishLog(ctx, log, err)
	return result, err
}

func (s *paymentService) HandleMomoCallback(ctx context.Context, cb model.MomoCallbackRequest) (*model.CallbackResult, error) {
	verified := s.momoGw.VerifySignature(cb)
	log := s.auditLog(ctx, model.GatewayMomo, cb.OrderID, cb, cb.Signature, verified)
	if !verified {
		return nil, model.NewSignatureError(model.GatewayMomo)
	}

	settlement := model.Settlement{
		OrderID:      cb.OrderID,
		Amount:       decimalFromInt64(cb.Amount),
		Succeeded:    cb.ResultCode == 0,
		GatewayTxnID: cb.TransID,
		Gateway:      model.GatewayMomo,
	}

	result, err := s.reconcile(ctx, settlement, cb.Message)
	s.finishLog(ctx, log, err)
	return result, err
}

func (s *paymentService) HandleBankCallback(ctx context.Context, cb model.BankCallbackRequest) (*model.CallbackResult, error) {
	verified := s.bankGw.VerifySignature(cb)
	log := s.auditLog(ctx, model.GatewayBankTransfer, cb.OrderID, cb, cb.Signature, verified)
	if !verified {
		return nil, model.NewSignatureError(model.GatewayBankTransfer)
	}

	amount, err := decimalFromString(cb.Amount)
	if err != nil {
		s.markFailed(ctx, log, err)
		return nil, model.NewPaymentError(model.ErrCodeValidation, "unparseable bank amount", err)
	}

	settlement := model.Settlement{
		OrderID:      cb.OrderID,
		Amount:       amount,
		Succeeded:    cb.Status == "success",
		GatewayTxnID: cb.TxnID,
		Gateway:      model.GatewayBankTransfer,
	}

	result, err := s.reconcile(ctx, settlement, cb.Status)
	s.finishLog(ctx, log, err)
	return result, err
}

// reconcile settles the ledger attempt and, on success, runs the
// confirmation engine. Both steps are idempotent, which is what makes
// double delivery (return + IPN, or webhook retries) safe.
func (s *paymentService) reconcile(ctx context.Context, settlement model.Settlement, message string) (*model.CallbackResult, error) {
	status := model.AttemptStatusFailed
	if settlement.Succeeded {
		status = model.AttemptStatusCompleted
	}

	var txnID *string
	if settlement.GatewayTxnID != "" {
		txnID = &settlement.GatewayTxnID
	}

	if err := s.attempts.Settle(ctx, settlement.OrderID, status, txnID); err != nil {
		return nil, err
	}

	result := &model.CallbackResult{
		OrderID:   settlement.OrderID,
		Gateway:   settlement.Gateway,
		Succeeded: settlement.Succeeded,
		Message:   message,
	}

	if settlement.Succeeded {
		confirmation, err := s.engine.ConfirmIfEligible(ctx, settlement)
		if err != nil {
			return nil, err
		}
		result.Confirmation = confirmation
	}

	return result, nil
}

// =====================================================
// STATUS / LISTING
// =====================================================

func (s *paymentService) GetPaymentStatus(ctx context.Context, orderID string, requesterID uuid.UUID, isAdmin bool) (*model.PaymentStatusResponse, error) {
	attempt, err := s.attempts.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && attempt.UserID != requesterID {
		return nil, model.ErrAttemptNotFound
	}

	return &model.PaymentStatusResponse{
		OrderID:      attempt.OrderID,
		Gateway:      attempt.Gateway,
		Amount:       attempt.Amount,
		Status:       attempt.Status,
		GatewayTxnID: attempt.GatewayTxnID,
		SettledAt:    attempt.SettledAt,
		CreatedAt:    attempt.CreatedAt,
	}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, userID uuid.UUID, req *model.ListPaymentsRequest) ([]model.PaymentAttempt, int, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	return s.attempts.ListByUser(ctx, userID, req.Page, req.Limit)
}

// =====================================================
// WEBHOOK RETRY
// =====================================================

// RetryUnprocessedWebhooks replays callbacks that verified but failed
// mid-processing. IPN handlers answer 200 on internal errors to stop
// gateway retries, so this job is the delivery guarantee.
func (s *paymentService) RetryUnprocessedWebhooks(ctx context.Context) (int, error) {
	logs, err := s.webhooks.ListUnprocessed(ctx, model.WebhookRetryBatchSize, webhookMaxRetries)
	if err != nil {
		return 0, err
	}

	retried := 0
	for _, wl := range logs {
		if err := s.replay(ctx, wl); err != nil {
			logger.Error("webhook replay failed", err)
			if markErr := s.webhooks.MarkError(ctx, wl.ID, err.Error()); markErr != nil {
				logger.Error("failed to record webhook replay error", markErr)
			}
			continue
		}
		if err := s.webhooks.MarkProcessed(ctx, wl.ID); err != nil {
			logger.Error("failed to mark webhook processed", err)
		}
		retried++
	}

	return retried, nil
}

// replay re-drives a logged callback through the normal path. The
// signature already verified at receive time; the stored body is
// re-parsed into the gateway's callback shape.
func (s *paymentService) replay(ctx context.Context, wl model.WebhookLog) error {
	body, err := json.Marshal(wl.Body)
	if err != nil {
		return fmt.Errorf("stored webhook body is not serializable: %w", err)
	}

	switch wl.Gateway {
	case model.GatewayVNPay:
		var cb model.VNPayCallbackRequest
		if err := json.Unmarshal(body, &cb); err != nil {
			return err
		}
		amount, err := vnpay.ParseAmount(cb.VnpAmount)
		if err != nil {
			return err
		}
		_, err = s.reconcile(ctx, model.Settlement{
			OrderID:      cb.VnpTxnRef,
			Amount:       amount,
			Succeeded:    cb.VnpResponseCode == vnpay.ResponseCodeSuccess,
			GatewayTxnID: cb.VnpTransactionNo,
			Gateway:      model.GatewayVNPay,
		}, "")
		return err

	case model.GatewayMomo:
		var cb model.MomoCallbackRequest
		if err := json.Unmarshal(body, &cb); err != nil {
			return err
		}
		_, err = s.reconcile(ctx, model.Settlement{
			OrderID:      cb.OrderID,
			Amount:       decimalFromInt64(cb.Amount),
			Succeeded:    cb.ResultCode == 0,
			GatewayTxnID: cb.TransID,
			Gateway:      model.GatewayMomo,
		}, "")
		return err

	case model.GatewayBankTransfer:
		var cb model.BankCallbackRequest
		if err := json.Unmarshal(body, &cb); err != nil {
			return err
		}
		amount, err := decimalFromString(cb.Amount)
		if err != nil {
			return err
		}
		_, err = s.reconcile(ctx, model.Settlement{
			OrderID:      cb.OrderID,
			Amount:       amount,
			Succeeded:    cb.Status == "success",
			GatewayTxnID: cb.TxnID,
			Gateway:      model.GatewayBankTransfer,
		}, "")
		return err
	}

	return fmt.Errorf("unknown gateway %q in webhook log", wl.Gateway)
}

// =====================================================
// AUDIT LOG HELPERS
// =====================================================

func (s *paymentService) auditLog(ctx context.Context, gw, orderID string, body interface{}, signature string, isValid bool) *model.WebhookLog {
	wl := &model.WebhookLog{
		Gateway: gw,
		Body:    toBodyMap(body),
		IsValid: &isValid,
	}
	if orderID != "" {
		wl.OrderID = &orderID
	}
	if signature != "" {
		wl.Signature = &signature
	}

	if err := s.webhooks.Insert(ctx, wl); err != nil {
		// The audit trail is best-effort; reconciliation still runs.
		logger.Error("failed to insert webhook log", err)
		return nil
	}
	return wl
}

func (s *paymentService) markFailed(ctx context.Context, wl *model.WebhookLog, cause error) {
	if wl == nil {
		return
	}
	if err := s.webhooks.MarkError(ctx, wl.ID, cause.Error()); err != nil {
		logger.Error("failed to record webhook error", err)
	}
}

func (s *paymentService) finishLog(ctx context.Context, wl *model.WebhookLog, processingErr error) {
	if wl == nil {
		return
	}
	if processingErr != nil {
		s.markFailed(ctx, wl, processingErr)
		return
	}
	if err := s.webhooks.MarkProcessed(ctx, wl.ID); err != nil {
		logger.Error("failed to mark webhook processed", err)
	}
}

func decimalFromInt64(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decimalFromString(v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", v, err)
	}
	return d, nil
}

func toBodyMap(v interface{}) map[string]interface{} {
	bytes, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
