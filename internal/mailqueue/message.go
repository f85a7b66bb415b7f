package mailqueue

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

var ErrUnsupportedMailType = errors.New("不支持的邮件类型")

type mailTemplate struct {
	file    string
	subject string
}

var mailTemplates = map[string]mailTemplate{
	domain.MailTypeBookingCreated:       {file: "booking_created_email.html", subject: "预约已提交"},
	domain.MailTypeBookingStatusChanged: {file: "booking_status_changed_email.html", subject: "预约状态变更"},
	domain.MailTypeNewBookingToProvider: {file: "new_booking_for_provider_email.html", subject: "收到新的预约"},
	domain.MailTypeResetPassword:        {file: "reset_password_otp_email.html", subject: "重置密码"},
	domain.MailTypeChangeEmail:          {file: "change_email_email.html", subject: "修改邮箱"},
}

// Decode 反序列化队列中的消息，Data 会被解析为 map，模板中通过 JSON 字段名访问
func Decode(body []byte) (domain.MailMessage, error) {
	msg := domain.MailMessage{}
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, err
	}
	if _, ok := mailTemplates[msg.Type]; !ok {
		return msg, fmt.Errorf("%w: %s", ErrUnsupportedMailType, msg.Type)
	}
	return msg, nil
}

// Build 根据邮件类型选择模板并构建邮件
func Build(from, subjectPrefix, templateDir string, m domain.MailMessage) (*mail.Msg, error) {
	mt, ok := mailTemplates[m.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMailType, m.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	tmpl, err := template.ParseFiles(filepath.Join(templateDir, mt.file))
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, m.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}

	subject := mt.subject
	if subjectPrefix != "" {
		subject = subjectPrefix + " - " + subject
	}
	msg.Subject(subject)

	return msg, nil
}
