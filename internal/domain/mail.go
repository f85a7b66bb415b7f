package domain

const (
	MailTypeBookingCreated       = "booking_created"
	MailTypeBookingStatusChanged = "booking_status_changed"
	MailTypeNewBookingToProvider = "new_booking_for_provider"
	MailTypeResetPassword        = "reset_password"
	MailTypeChangeEmail          = "change_email"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

// BookingMailData 预约相关邮件的内容，时间均为服务商所在时区的当地时间
type BookingMailData struct {
	ClientName   string `json:"clientName"`
	ClientPhone  string `json:"clientPhone"`
	ProviderName string `json:"providerName"`
	ServiceName  string `json:"serviceName"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`
}

type ResetPasswordMailData struct {
	Name       string `json:"name"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	Name       string `json:"name"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}
