package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/booking"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("请求体格式错误")
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusNotFound, msg)
}

func (h *Handler) conflict(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusConflict, msg)
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, "服务器内部错误")
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

// 数据库约束名到提示信息
var constraintMessages = map[string]string{
	"providers_username_key":             "用户名已存在",
	"providers_email_key":                "邮箱已被占用",
	"staff_members_provider_id_name_key": "已存在同名员工",
	"services_provider_id_name_key":      "已存在同名服务",
	"bookings_staff_member_id_fkey":      "该员工已有预约记录，无法删除，请改为停用",
	"bookings_service_id_fkey":           "该服务已有预约记录，无法删除，请改为停用",
}

// storageError 处理写入数据库时的错误，乐观锁失败和已知约束冲突返回 409
func (h *Handler) storageError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		if msg, ok := constraintMessages[pgErr.ConstraintName]; ok {
			h.conflict(w, r, msg)
			return
		}
		h.internalServerError(w, r, err)
	case errors.Is(err, sql.ErrNoRows):
		h.conflict(w, r, "数据已被修改，请刷新后重试")
	default:
		h.internalServerError(w, r, err)
	}
}

// bookingError 将预约服务返回的错误映射为 HTTP 状态码
func (h *Handler) bookingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case booking.IsConflict(err):
		h.conflict(w, r, conflictMessage(err))
	case booking.IsNotFound(err):
		h.notFound(w, r, err.Error())
	case booking.IsInvalidInput(err):
		h.badRequest(w, r, err)
	default:
		h.internalServerError(w, r, err)
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, booking.ErrSlotUnavailable) {
		return booking.ErrSlotUnavailable.Error()
	}
	return booking.ErrEditConflict.Error()
}
