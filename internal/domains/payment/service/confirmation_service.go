package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	bookingModel "hotelbooking-backend/internal/domains/booking/model"
	bookingService "hotelbooking-backend/internal/domains/booking/service"
	"hotelbooking-backend/internal/domains/payment/model"
	"hotelbooking-backend/internal/domains/payment/repository"
	"hotelbooking-backend/internal/shared"
	"hotelbooking-backend/pkg/logger"
)

type confirmationEngine struct {
	attempts repository.AttemptRepository
	bookings bookingService.BookingService
	asynq    *asynq.Client
}

func NewConfirmationEngine(
	attempts repository.AttemptRepository,
	bookings bookingService.BookingService,
	asynqClient *asynq.Client,
) ConfirmationEngine {
	return &confirmationEngine{
		attempts: attempts,
		bookings: bookings,
		asynq:    asynqClient,
	}
}

// ConfirmIfEligible recomputes the paid fraction for the settled
// attempt's order family and, at 50% or more, makes the reservation
// real. Loyalty points, the confirmation email and the room display
// flip are gated behind the vip_points_added compare-and-swap, so a
// return, an IPN and a delayed retry for the same settlement apply
// them once.
func (e *confirmationEngine) ConfirmIfEligible(ctx context.Context, settlement model.Settlement) (*model.ConfirmationResult, error) {
	// Step 1: Recover the attempt and its booking snapshot
	attempt, err := e.attempts.GetByOrderID(ctx, settlement.OrderID)
	if err != nil {
		if errors.Is(err, model.ErrAttemptNotFound) {
			// A gateway attempt unrelated to any reservation.
			return &model.ConfirmationResult{Confirmed: false, PaidFraction: decimal.Zero}, nil
		}
		return nil, err
	}

	snapshot := attempt.ExtraData
	if snapshot == nil && attempt.BookingRef == nil {
		return &model.ConfirmationResult{Confirmed: false, PaidFraction: decimal.Zero}, nil
	}

	// Step 2: Resolve the booking id: ledger link first, then the
	// snapshot, then the reference embedded in the order id.
	bookingID := attempt.BookingRef
	if bookingID == nil && snapshot != nil {
		bookingID = snapshot.BookingID
	}
	if bookingID == nil {
		if ref, err := model.ParseOrderID(settlement.OrderID); err == nil {
			bookingID = ref.BookingID
		}
	}

	// Step 3: Total price and total paid across the order family
	var booking *bookingModel.Booking
	if bookingID != nil {
		b, err := e.bookings.GetBooking(ctx, *bookingID, attempt.UserID, true)
		if err != nil && !errors.Is(err, bookingModel.ErrBookingNotFound) {
			return nil, err
		}
		booking = b
	}

	totalPrice := decimal.Zero
	if snapshot != nil {
		totalPrice = snapshot.EffectiveTotal()
	}
	if totalPrice.IsZero() && booking != nil {
		totalPrice = booking.FinalPrice
	}
	if totalPrice.IsZero() {
		// Divide-by-zero guard: an unpriced attempt never confirms.
		return &model.ConfirmationResult{Confirmed: false, PaidFraction: decimal.Zero}, nil
	}

	totalPaid := attempt.Amount
	if attempt.BookingRef != nil {
		sum, err := e.attempts.SumCompleted(ctx, *attempt.BookingRef)
		if err != nil {
			return nil, err
		}
		totalPaid = sum
	}

	fraction := totalPaid.Div(totalPrice)

	// Step 4: Deposit not met yet. Not an error, nothing else happens.
	if totalPaid.Mul(decimal.NewFromInt(2)).LessThan(totalPrice) {
		return &model.ConfirmationResult{Confirmed: false, PaidFraction: fraction, BookingID: bookingID}, nil
	}

	paymentStatus := bookingModel.PaymentStatusPartial
	if totalPaid.GreaterThanOrEqual(totalPrice) {
		paymentStatus = bookingModel.PaymentStatusPaid
	}

	// Step 5: Find or create the booking
	if booking == nil {
		if snapshot == nil {
			return nil, model.NewPaymentError(model.ErrCodeSnapshotMissing,
				"settled attempt has neither a booking row nor a snapshot", model.ErrSnapshotMissing)
		}

		created, err := e.bookings.CreateFromSnapshot(ctx, snapshot.UserID, snapshotToRequest(snapshot, paymentStatus))
		if err != nil {
			return nil, err
		}
		booking = created

		if err := e.attempts.LinkBooking(ctx, settlement.OrderID, created.ID); err != nil {
			logger.Error("failed to link booking to settled attempt", err)
		}
	} else {
		confirmed, err := e.bookings.ConfirmBooking(ctx, booking.ID, paymentStatus)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			// The booking reached a terminal state before the money
			// arrived (user cancelled, then the IPN or a webhook replay
			// landed). Leave it alone; the settled attempt stays on the
			// ledger for manual reconciliation.
			logger.Info("settled payment left unapplied, booking is no longer confirmable", map[string]interface{}{
				"orderId":       settlement.OrderID,
				"bookingId":     booking.ID.String(),
				"bookingStatus": booking.BookingStatus,
			})
			return &model.ConfirmationResult{Confirmed: false, PaidFraction: fraction, BookingID: &booking.ID}, nil
		}
		booking.BookingStatus = bookingModel.BookingStatusConfirmed
		booking.PaymentStatus = paymentStatus
	}

	result := &model.ConfirmationResult{
		Confirmed:    true,
		PaidFraction: fraction,
		BookingID:    &booking.ID,
	}

	// Step 6: Side effects, exactly once. Only the caller that flips
	// the flag enqueues them.
	won, err := e.bookings.MarkVipPointsAdded(ctx, booking.ID)
	if err != nil {
		logger.Error("failed to flip loyalty idempotency flag", err)
		return result, nil
	}
	if !won {
		return result, nil
	}

	e.enqueueSideEffects(booking)

	return result, nil
}

func snapshotToRequest(s *model.BookingSnapshot, paymentStatus string) *bookingModel.CreateBookingRequest {
	return &bookingModel.CreateBookingRequest{
		HotelID:             s.HotelID,
		RoomTypeID:          s.RoomTypeID,
		CheckInDate:         s.CheckInDate,
		CheckOutDate:        s.CheckOutDate,
		GuestName:           s.GuestName,
		GuestEmail:          s.GuestEmail,
		GuestPhone:          s.GuestPhone,
		GuestCount:          s.GuestCount,
		RoomCount:           s.RoomCount,
		RoomPrice:           s.RoomPrice,
		Discount:            s.Discount,
		PaymentMethod:       s.PaymentMethod,
		PaymentStatus:       paymentStatus,
		CancellationAllowed: s.CancellationAllowed,
	}
}

// enqueueSideEffects schedules loyalty accrual, the confirmation email
// and the room display flip. All best-effort; the money has settled
// and the reservation stays valid regardless of a downstream hiccup.
func (e *confirmationEngine) enqueueSideEffects(b *bookingModel.Booking) {
	if e.asynq == nil {
		return
	}

	e.enqueue(shared.TypeGrantLoyaltyPoints, shared.GrantLoyaltyPointsPayload{
		BookingID:  b.ID.String(),
		UserID:     b.UserID.String(),
		FinalPrice: b.FinalPrice.String(),
	}, shared.QueueCritical)

	e.enqueue(shared.TypeSendBookingConfirmation, shared.BookingConfirmationPayload{
		BookingID:    b.ID.String(),
		BookingCode:  b.BookingCode,
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
		CheckInDate:  b.CheckInDate,
		CheckOutDate: b.CheckOutDate,
		FinalPrice:   b.FinalPrice.String(),
	}, shared.QueueEmail)

	if b.RoomID != nil {
		e.enqueue(shared.TypeSyncRoomDisplay, shared.SyncRoomDisplayPayload{
			RoomID: b.RoomID.String(),
			Status: "occupied",
		}, shared.QueueDefault)
	}
}

func (e *confirmationEngine) enqueue(taskType string, payload interface{}, queue string) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal task payload", err)
		return
	}
	if _, err := e.asynq.Enqueue(asynq.NewTask(taskType, bytes), asynq.Queue(queue)); err != nil {
		logger.Error("failed to enqueue "+taskType, err)
	}
}
