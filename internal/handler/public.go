package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/booking"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/utils"
)

func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	provider := r.Context().Value(ProviderCtx).(*domain.Provider)
	h.successResponse(w, r, "获取服务商信息成功", newPublicProviderResponse(provider))
}

func (h *Handler) GetPublicServices(w http.ResponseWriter, r *http.Request) {
	provider := r.Context().Value(ProviderCtx).(*domain.Provider)

	services, err := h.repository.GetServicesByProviderID(provider.ID, true)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取服务列表成功", services)
}

func (h *Handler) GetPublicStaffMembers(w http.ResponseWriter, r *http.Request) {
	provider := r.Context().Value(ProviderCtx).(*domain.Provider)

	members, err := h.repository.GetStaffMembersByProviderID(provider.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", newStaffMemberResponses(members, true))
}

// queryID 读取可选的 ID 查询参数
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New(name + " 参数无效")
	}
	return &id, nil
}

// availabilityQuery 从查询参数中解析 date、serviceID、staffMemberID 和 granularity
func (h *Handler) availabilityQuery(r *http.Request, providerID int64) (booking.AvailabilityQuery, error) {
	q := booking.AvailabilityQuery{
		ProviderID:  providerID,
		Date:        r.URL.Query().Get("date"),
		Granularity: h.config.Booking.DefaultGranularity,
	}
	if q.Date == "" {
		return q, errors.New("date 参数不能为空")
	}

	serviceID, err := queryID(r, "serviceID")
	if err != nil {
		return q, err
	}
	if serviceID == nil {
		return q, errors.New("serviceID 参数不能为空")
	}
	q.ServiceID = *serviceID

	q.StaffMemberID, err = queryID(r, "staffMemberID")
	if err != nil {
		return q, err
	}

	if raw := r.URL.Query().Get("granularity"); raw != "" {
		g, err := strconv.Atoi(raw)
		if err != nil || g == 0 {
			return q, booking.ErrInvalidGranularity
		}
		q.Granularity = g
	}

	return q, nil
}

func (h *Handler) GetPublicAvailability(w http.ResponseWriter, r *http.Request) {
	provider := r.Context().Value(ProviderCtx).(*domain.Provider)
	h.writeAvailability(w, r, provider.ID)
}

func (h *Handler) writeAvailability(w http.ResponseWriter, r *http.Request, providerID int64) {
	q, err := h.availabilityQuery(r, providerID)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.bookings.ComputeAvailability(q)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取可预约时段成功", result)
}

type submitBookingRequest struct {
	ServiceID     int64  `json:"serviceID" validate:"required,min=1"`
	StaffMemberID *int64 `json:"staffMemberID" validate:"omitempty,min=1"`
	Date          string `json:"date" validate:"required"`
	Time          string `json:"time" validate:"required"`
	ClientName    string `json:"clientName" validate:"required,max=100"`
	ClientPhone   string `json:"clientPhone" validate:"required"`
	ClientEmail   string `json:"clientEmail" validate:"omitempty,email"`
	Notes         string `json:"notes" validate:"max=1000"`
}

// toCreateRequest 把手机号统一为 E.164 格式
func (h *Handler) toCreateRequest(providerID int64, req *submitBookingRequest) (booking.CreateBookingRequest, error) {
	phone, err := utils.NormalizePhone(req.ClientPhone, h.config.Booking.PhoneRegion)
	if err != nil {
		return booking.CreateBookingRequest{}, err
	}

	return booking.CreateBookingRequest{
		ProviderID:    providerID,
		ServiceID:     req.ServiceID,
		StaffMemberID: req.StaffMemberID,
		Date:          req.Date,
		Time:          req.Time,
		ClientName:    req.ClientName,
		ClientPhone:   phone,
		ClientEmail:   req.ClientEmail,
		Notes:         req.Notes,
	}, nil
}

// SubmitBooking 客户提交的预约总是待确认状态
// 开始时间不要求落在查询空闲时段时使用的网格上，只要以它开始的时段可约即可
func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	provider := r.Context().Value(ProviderCtx).(*domain.Provider)

	var req submitBookingRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	createReq, err := h.toCreateRequest(provider.ID, &req)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	view, err := h.bookings.CreateBooking(createReq)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, Response{
		Success: true,
		Message: "预约已提交，请等待确认",
		Data:    view,
	})
}
