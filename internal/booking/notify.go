package booking

import (
	"log/slog"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

var statusText = map[domain.BookingStatus]string{
	domain.BookingStatusPending:   "待确认",
	domain.BookingStatusConfirmed: "已确认",
	domain.BookingStatusCancelled: "已取消",
	domain.BookingStatusCompleted: "已完成",
}

func (s *Service) mailData(provider *domain.Provider, service *domain.Service, b *domain.Booking, reason string) domain.BookingMailData {
	norm := s.Normalizer(provider)
	date, start := norm.ToLocal(b.StartTime)
	_, end := norm.ToLocal(b.EndTime)

	return domain.BookingMailData{
		ClientName:   b.ClientName,
		ClientPhone:  b.ClientPhone,
		ProviderName: provider.Name,
		ServiceName:  service.Name,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		Status:       statusText[b.Status],
		Reason:       reason,
	}
}

// publish 邮件发送失败不影响预约本身，只记录日志
func (s *Service) publish(msg domain.MailMessage) {
	if s.notifier == nil || msg.To == "" {
		return
	}
	if err := s.notifier.Publish(msg); err != nil {
		slog.Error("无法将邮件放入队列", "type", msg.Type, "to", msg.To, "error", err)
	}
}

func (s *Service) notifyCreated(dc *dayContext, b *domain.Booking) {
	data := s.mailData(dc.provider, dc.service, b, "")

	s.publish(domain.MailMessage{
		Type: domain.MailTypeBookingCreated,
		To:   b.ClientEmail,
		Data: data,
	})
	s.publish(domain.MailMessage{
		Type: domain.MailTypeNewBookingToProvider,
		To:   dc.provider.Email,
		Data: data,
	})
}

func (s *Service) notifyStatusChanged(provider *domain.Provider, service *domain.Service, b *domain.Booking, reason string) {
	s.publish(domain.MailMessage{
		Type: domain.MailTypeBookingStatusChanged,
		To:   b.ClientEmail,
		Data: s.mailData(provider, service, b, reason),
	})
}
