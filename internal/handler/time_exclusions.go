package handler

import (
	"fmt"
	"net/http"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/utils"
)

func (h *Handler) GetMyTimeExclusions(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	exclusions, err := h.repository.GetTimeExclusionsByProviderID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	resp := make([]timeExclusionResponse, 0, len(exclusions))
	for _, ex := range exclusions {
		resp = append(resp, newTimeExclusionResponse(ex))
	}

	h.successResponse(w, r, "获取屏蔽时段成功", resp)
}

// checkExclusionOverlap 同一天内启用的屏蔽时段不能互相重叠
func (h *Handler) checkExclusionOverlap(w http.ResponseWriter, r *http.Request, ex *domain.TimeExclusion) bool {
	existing, err := h.repository.GetTimeExclusionsByProviderID(ex.ProviderID)
	if err != nil {
		h.internalServerError(w, r, err)
		return false
	}

	if other := utils.FindOverlappingExclusion(existing, ex); other != nil {
		h.conflict(w, r, fmt.Sprintf("与已有的屏蔽时段「%s」重叠", other.Name))
		return false
	}

	return true
}

func (h *Handler) CreateTimeExclusion(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req utils.TimeExclusionInput
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ex := &domain.TimeExclusion{
		ProviderID: myInfo.ID,
		IsActive:   true,
	}
	if err := req.Apply(ex); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !h.checkExclusionOverlap(w, r, ex) {
		return
	}

	if err := h.repository.CreateTimeExclusion(ex); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建屏蔽时段成功", newTimeExclusionResponse(ex))
}

func (h *Handler) GetTimeExclusion(w http.ResponseWriter, r *http.Request) {
	ex := r.Context().Value(ExclusionCtx).(*domain.TimeExclusion)
	h.successResponse(w, r, "获取屏蔽时段成功", newTimeExclusionResponse(ex))
}

func (h *Handler) UpdateTimeExclusion(w http.ResponseWriter, r *http.Request) {
	ex := r.Context().Value(ExclusionCtx).(*domain.TimeExclusion)

	var req utils.TimeExclusionInput
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := req.Apply(ex); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !h.checkExclusionOverlap(w, r, ex) {
		return
	}

	if err := h.repository.UpdateTimeExclusion(ex); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新屏蔽时段成功", newTimeExclusionResponse(ex))
}

func (h *Handler) DeleteTimeExclusion(w http.ResponseWriter, r *http.Request) {
	ex := r.Context().Value(ExclusionCtx).(*domain.TimeExclusion)

	if err := h.repository.DeleteTimeExclusion(ex.ID); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除屏蔽时段成功", nil)
}
