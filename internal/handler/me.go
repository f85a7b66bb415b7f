package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)
	h.successResponse(w, r, "获取个人信息成功", newProviderResponse(myInfo))
}

func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req struct {
		Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
		Phone    *string `json:"phone"`
		Timezone *string `json:"timezone"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		myInfo.Name = *req.Name
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			myInfo.Phone = ""
		} else {
			phone, err := utils.NormalizePhone(*req.Phone, h.config.Booking.PhoneRegion)
			if err != nil {
				h.badRequest(w, r, err)
				return
			}
			myInfo.Phone = phone
		}
	}
	if req.Timezone != nil {
		norm, err := availability.ParseTimezone(*req.Timezone)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		myInfo.Timezone = norm.Name()
	}

	if err := h.repository.UpdateProvider(myInfo); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新个人信息成功", newProviderResponse(myInfo))
}

func (h *Handler) UpdateMySchedule(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req utils.WorkScheduleInput
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ws, err := req.ToDomain()
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo.Schedule = ws
	if err := h.repository.UpdateProvider(myInfo); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新工作时间成功", newProviderResponse(myInfo))
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(myInfo.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.badRequest(w, r, errors.New("旧密码错误"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdateProvider(myInfo); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新密码成功", nil)
}

func changeEmailOTPKey(username, email string) string {
	return fmt.Sprintf("otp_%s_change_email_to_%s", username, email)
}

func (h *Handler) RequireUpdateEmail(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req struct {
		NewEmail string `json:"newEmail" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 检测新邮箱是否已被占用
	isExists, err := h.repository.CheckProviderEmailExists(req.NewEmail)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if isExists {
		h.conflict(w, r, "邮箱已被占用")
		return
	}

	err = h.issueOTP(changeEmailOTPKey(myInfo.Username, req.NewEmail), func(otp string, minutes int) domain.MailMessage {
		return domain.MailMessage{
			Type: domain.MailTypeChangeEmail,
			To:   req.NewEmail,
			Data: domain.ChangeEmailMailData{
				Name:       myInfo.Name,
				OTP:        otp,
				Expiration: minutes,
			},
		}
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更改邮箱所需验证码已通过邮件发送", nil)
}

func (h *Handler) ConfirmUpdateEmail(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req struct {
		OTP      string `json:"otp" validate:"required"`
		NewEmail string `json:"newEmail" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ok, err := h.checkOTP(changeEmailOTPKey(myInfo.Username, req.NewEmail), req.OTP)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok {
		h.badRequest(w, r, errors.New("验证码错误"))
		return
	}

	myInfo.Email = req.NewEmail
	if err := h.repository.UpdateProvider(myInfo); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "更改邮箱成功", nil)
}
