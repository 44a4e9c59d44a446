package shared

import "time"

// Asynq task types. The worker binary registers a handler per type.
const (
	TypeGrantLoyaltyPoints      = "loyalty:grant_points"
	TypeSendBookingConfirmation = "email:booking_confirmation"
	TypeRetryFailedWebhooks     = "payment:retry_failed_webhooks"
	TypeSyncRoomDisplay         = "room:sync_display_status"
)

// Queue names by priority.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueEmail    = "email"
)

// GrantLoyaltyPointsPayload carries everything the loyalty handler
// needs. FinalPrice is the accrual basis, captured when the task is
// enqueued; the producer flips the booking's vip_points_added flag
// first, which caps delivery at one task per booking.
type GrantLoyaltyPointsPayload struct {
	BookingID  string `json:"bookingId"`
	UserID     string `json:"userId"`
	FinalPrice string `json:"finalPrice"`
}

// BookingConfirmationPayload is the email job input.
type BookingConfirmationPayload struct {
	BookingID    string    `json:"bookingId"`
	BookingCode  string    `json:"bookingCode"`
	GuestName    string    `json:"guestName"`
	GuestEmail   string    `json:"guestEmail"`
	CheckInDate  time.Time `json:"checkInDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
	FinalPrice   string    `json:"finalPrice"`
}

// RetryFailedWebhooksPayload is empty; the job scans the webhook log
// table for unprocessed rows.
type RetryFailedWebhooksPayload struct{}

// SyncRoomDisplayPayload flips a physical room's dashboard badge.
type SyncRoomDisplayPayload struct {
	RoomID string `json:"roomId"`
	Status string `json:"status"`
}
