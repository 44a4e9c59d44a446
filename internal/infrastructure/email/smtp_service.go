package email

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"hotelbooking-backend/pkg/logger"
)

// BookingConfirmationData is everything the confirmation email needs.
// It mirrors the queue payload so the worker can pass it straight
// through.
type BookingConfirmationData struct {
	BookingCode  string
	GuestName    string
	GuestEmail   string
	CheckInDate  time.Time
	CheckOutDate time.Time
	FinalPrice   string
}

type EmailService interface {
	SendBookingConfirmation(ctx context.Context, data BookingConfirmationData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

// NewDevEmailService talks to a local SMTP sink (mailpit/mailhog) in
// development. Production swaps the host and port via config.
func NewDevEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendBookingConfirmation(ctx context.Context, data BookingConfirmationData) error {
	subject := fmt.Sprintf("Xác nhận đặt phòng %s", data.BookingCode)
	body := fmt.Sprintf(`Chào %s,

	Đặt phòng của bạn đã được xác nhận.

	Mã đặt phòng: %s
	Nhận phòng:   %s
	Trả phòng:    %s
	Tổng tiền:    %s VND

	Vui lòng xuất trình mã đặt phòng khi nhận phòng.`,
		data.GuestName,
		data.BookingCode,
		data.CheckInDate.Format("02/01/2006"),
		data.CheckOutDate.Format("02/01/2006"),
		data.FinalPrice)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, data.GuestEmail, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{data.GuestEmail}, msg); err != nil {
		return fmt.Errorf("send booking confirmation: %w", err)
	}

	logger.Info("booking confirmation email sent", map[string]interface{}{
		"bookingCode": data.BookingCode,
		"email":       data.GuestEmail,
	})
	return nil
}
