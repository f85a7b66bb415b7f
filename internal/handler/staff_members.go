package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/utils"
)

func (h *Handler) GetMyStaffMembers(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	members, err := h.repository.GetStaffMembersByProviderID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", newStaffMemberResponses(members, false))
}

// normalizeOptionalPhone 空号码保持为空
func (h *Handler) normalizeOptionalPhone(phone string) (string, error) {
	if phone == "" {
		return "", nil
	}
	return utils.NormalizePhone(phone, h.config.Booking.PhoneRegion)
}

func (h *Handler) CreateStaffMember(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req struct {
		Name     string                   `json:"name" validate:"required,max=100"`
		Email    string                   `json:"email" validate:"omitempty,email"`
		Phone    string                   `json:"phone"`
		IsActive *bool                    `json:"isActive"`
		Schedule *utils.WorkScheduleInput `json:"schedule"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	phone, err := h.normalizeOptionalPhone(req.Phone)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	sm := &domain.StaffMember{
		ProviderID: myInfo.ID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      phone,
		IsActive:   true,
	}
	if req.IsActive != nil {
		sm.IsActive = *req.IsActive
	}
	if req.Schedule != nil {
		ws, err := req.Schedule.ToDomain()
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		sm.Schedule = &ws
	}

	if err := h.repository.CreateStaffMember(sm); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建员工成功", newStaffMemberResponse(sm))
}

func (h *Handler) GetStaffMember(w http.ResponseWriter, r *http.Request) {
	sm := r.Context().Value(StaffMemberCtx).(*domain.StaffMember)
	h.successResponse(w, r, "获取员工信息成功", newStaffMemberResponse(sm))
}

func (h *Handler) UpdateStaffMember(w http.ResponseWriter, r *http.Request) {
	sm := r.Context().Value(StaffMemberCtx).(*domain.StaffMember)

	var req struct {
		Name     *string                  `json:"name" validate:"omitempty,min=1,max=100"`
		Email    *string                  `json:"email" validate:"omitempty,email"`
		Phone    *string                  `json:"phone"`
		IsActive *bool                    `json:"isActive"`
		Schedule *utils.WorkScheduleInput `json:"schedule"`
		// 为 true 时清除员工自己的工作时间，改为沿用服务商的工作时间
		UseProviderSchedule bool `json:"useProviderSchedule"`
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
		sm.Name = *req.Name
	}
	if req.Email != nil {
		sm.Email = *req.Email
	}
	if req.Phone != nil {
		phone, err := h.normalizeOptionalPhone(*req.Phone)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		sm.Phone = phone
	}
	if req.IsActive != nil {
		sm.IsActive = *req.IsActive
	}
	switch {
	case req.UseProviderSchedule:
		sm.Schedule = nil
	case req.Schedule != nil:
		ws, err := req.Schedule.ToDomain()
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		sm.Schedule = &ws
	}

	if err := h.repository.UpdateStaffMember(sm); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新员工信息成功", newStaffMemberResponse(sm))
}

func (h *Handler) DeleteStaffMember(w http.ResponseWriter, r *http.Request) {
	sm := r.Context().Value(StaffMemberCtx).(*domain.StaffMember)

	if err := h.repository.DeleteStaffMember(sm.ID); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除员工成功", nil)
}
