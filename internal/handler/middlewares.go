package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 从 cookie 中获取 token
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, http.StatusUnauthorized, "用户未登录")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		// 验证 token
		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.errorResponse(w, r, http.StatusUnauthorized, "无效的令牌")
			return
		}

		ctx := context.WithValue(r.Context(), SubCtxKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subString := r.Context().Value(SubCtxKey).(string)

		sub, err := strconv.ParseInt(subString, 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusUnauthorized, "无效的令牌")
			return
		}

		myInfo, err := h.repository.GetProviderByID(sub)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, http.StatusUnauthorized, "账号不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// pathID 解析路径中的 ID 参数
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) publicProvider(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := pathID(r, "providerID")
		if !ok {
			h.badRequest(w, r, errors.New("服务商ID无效"))
			return
		}

		provider, err := h.repository.GetProviderByID(providerID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "服务商不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ProviderCtx, provider)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// 以下几个中间件加载属于当前服务商的资源，属于其他服务商的资源一律视为不存在

func (h *Handler) staffMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

		id, ok := pathID(r, "id")
		if !ok {
			h.badRequest(w, r, errors.New("员工ID无效"))
			return
		}

		sm, err := h.repository.GetStaffMemberByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "员工不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if sm.ProviderID != myInfo.ID {
			h.notFound(w, r, "员工不存在")
			return
		}

		ctx := context.WithValue(r.Context(), StaffMemberCtx, sm)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) service(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

		id, ok := pathID(r, "id")
		if !ok {
			h.badRequest(w, r, errors.New("服务ID无效"))
			return
		}

		svc, err := h.repository.GetServiceByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "服务不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if svc.ProviderID != myInfo.ID {
			h.notFound(w, r, "服务不存在")
			return
		}

		ctx := context.WithValue(r.Context(), ServiceCtx, svc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) timeExclusion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

		id, ok := pathID(r, "id")
		if !ok {
			h.badRequest(w, r, errors.New("屏蔽时段ID无效"))
			return
		}

		ex, err := h.repository.GetTimeExclusionByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.notFound(w, r, "屏蔽时段不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if ex.ProviderID != myInfo.ID {
			h.notFound(w, r, "屏蔽时段不存在")
			return
		}

		ctx := context.WithValue(r.Context(), ExclusionCtx, ex)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) booking(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo := r.Context().Value(MyInfoCtx).(*domain.Provider)

		id, ok := pathID(r, "id")
		if !ok {
			h.badRequest(w, r, errors.New("预约ID无效"))
			return
		}

		view, err := h.bookings.GetBooking(myInfo.ID, id)
		if err != nil {
			h.bookingError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), BookingCtx, view)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := h.limiter.Allow(r.Context(), clientKey(r))
		if err != nil {
			// 限流服务不可用时放行
			slog.Warn("限流检查失败", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			h.errorResponse(w, r, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			return
		}
		next.ServeHTTP(w, r)
	})
}
