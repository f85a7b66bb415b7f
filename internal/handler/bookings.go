package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/booking"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

func (h *Handler) GetMyAvailability(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)
	h.writeAvailability(w, r, myInfo.ID)
}

func (h *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	date := r.URL.Query().Get("date")
	if date == "" {
		h.badRequest(w, r, errors.New("date 参数不能为空"))
		return
	}
	staffMemberID, err := queryID(r, "staffMemberID")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	views, err := h.bookings.ListBookingsOnDate(myInfo.ID, date, staffMemberID)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取预约列表成功", views)
}

// CreateBooking 服务商手动录入预约，可以直接设为已确认
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

	var req struct {
		submitBookingRequest
		Status string `json:"status" validate:"omitempty,oneof=pending confirmed"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	createReq, err := h.toCreateRequest(myInfo.ID, &req.submitBookingRequest)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	createReq.Status = domain.BookingStatus(req.Status)

	view, err := h.bookings.CreateBooking(createReq)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, Response{
		Success: true,
		Message: "创建预约成功",
		Data:    view,
	})
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	view := r.Context().Value(BookingCtx).(*booking.BookingView)
	h.successResponse(w, r, "获取预约成功", view)
}

func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)
	view := r.Context().Value(BookingCtx).(*booking.BookingView)

	var req struct {
		Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
		Reason string `json:"reason" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.bookings.UpdateBookingStatus(myInfo.ID, view.ID, domain.BookingStatus(req.Status), req.Reason)
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新预约状态成功", updated)
}

func (h *Handler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)
	view := r.Context().Value(BookingCtx).(*booking.BookingView)

	var req struct {
		Date          string `json:"date" validate:"required"`
		Time          string `json:"time" validate:"required"`
		StaffMemberID *int64 `json:"staffMemberID" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.bookings.RescheduleBooking(booking.RescheduleRequest{
		ProviderID:    myInfo.ID,
		BookingID:     view.ID,
		Date:          req.Date,
		Time:          req.Time,
		StaffMemberID: req.StaffMemberID,
	})
	if err != nil {
		h.bookingError(w, r, err)
		return
	}

	h.successResponse(w, r, "调整预约时间成功", updated)
}
