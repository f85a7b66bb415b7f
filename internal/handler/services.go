package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

func (h *Handler) GetMyServices(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	services, err := h.repository.GetServicesByProviderID(myInfo.ID, false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取服务列表成功", services)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req struct {
		Name            string `json:"name" validate:"required,max=100"`
		Description     string `json:"description" validate:"max=1000"`
		DurationMinutes int32  `json:"durationMinutes" validate:"required,min=1,max=720"`
		Price           int64  `json:"price" validate:"min=0"`
		IsActive        *bool  `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	svc := &domain.Service{
		ProviderID:      myInfo.ID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        true,
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := h.repository.CreateService(svc); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建服务成功", svc)
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)
	h.successResponse(w, r, "获取服务信息成功", svc)
}

// UpdateService 修改时长不影响已经存在的预约，它们保留创建时的结束时间
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)

	var req struct {
		Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
		Description     *string `json:"description" validate:"omitempty,max=1000"`
		DurationMinutes *int32  `json:"durationMinutes" validate:"omitempty,min=1,max=720"`
		Price           *int64  `json:"price" validate:"omitempty,min=0"`
		IsActive        *bool   `json:"isActive"`
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
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateService(svc); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新服务成功", svc)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)

	if err := h.repository.DeleteService(svc.ID); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除服务成功", nil)
}
