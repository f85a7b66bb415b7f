package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/booking"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/config"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
)

// Repository 是 handler 直接使用的持久化操作，由 repository.Repository 实现
type Repository interface {
	booking.Store

	GetProviderByUsername(username string) (*domain.Provider, error)
	CheckProviderEmailExists(email string) (bool, error)
	UpdateProvider(p *domain.Provider) error

	GetStaffMembersByProviderID(providerID int64) ([]*domain.StaffMember, error)
	CreateStaffMember(sm *domain.StaffMember) error
	UpdateStaffMember(sm *domain.StaffMember) error
	DeleteStaffMember(id int64) error

	GetServicesByProviderID(providerID int64, onlyActive bool) ([]*domain.Service, error)
	CreateService(svc *domain.Service) error
	UpdateService(svc *domain.Service) error
	DeleteService(id int64) error

	GetTimeExclusionByID(id int64) (*domain.TimeExclusion, error)
	GetTimeExclusionsByProviderID(providerID int64) ([]*domain.TimeExclusion, error)
	CreateTimeExclusion(ex *domain.TimeExclusion) error
	UpdateTimeExclusion(ex *domain.TimeExclusion) error
	DeleteTimeExclusion(id int64) error
}

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    Repository
	bookings      *booking.Service
	translator    ut.Translator
	mailPublisher booking.Notifier
	otp           OTPStore
	limiter       Limiter

	Mux *chi.Mux
}

// NewHandler 创建 handler，rdb 为空时验证码功能不可用，限流退化为进程内限流
func NewHandler(cfg *config.Config, repo Repository, bookings *booking.Service, publisher booking.Notifier, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	h := &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		bookings:      bookings,
		translator:    trans,
		mailPublisher: publisher,

		Mux: chi.NewRouter(),
	}

	if rdb != nil {
		h.otp = &redisOTPStore{rdb: rdb}
		h.limiter = NewRedisLimiter(rdb, cfg.Booking.RateLimitPerMinute, time.Minute, "booking_rl")
	} else {
		h.limiter = NewMemoryLimiter(cfg.Booking.RateLimitPerMinute, time.Minute)
	}

	return h, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 客户无需登录即可查看空闲时段并提交预约
	h.Mux.Route("/providers/{providerID}", func(r chi.Router) {
		r.Use(h.publicProvider)
		r.Get("/", h.GetProvider)
		r.Get("/services", h.GetPublicServices)
		r.Get("/staff-members", h.GetPublicStaffMembers)
		r.With(h.rateLimit).Get("/availability", h.GetPublicAvailability)
		r.With(h.rateLimit).Post("/bookings", h.SubmitBooking)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/me", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/", h.UpdateMyProfile)
			r.Put("/schedule", h.UpdateMySchedule)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})

			r.Get("/availability", h.GetMyAvailability)

			r.Route("/staff-members", func(r chi.Router) {
				r.Get("/", h.GetMyStaffMembers)
				r.Post("/", h.CreateStaffMember)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.staffMember)
					r.Get("/", h.GetStaffMember)
					r.Patch("/", h.UpdateStaffMember)
					r.Delete("/", h.DeleteStaffMember)
				})
			})

			r.Route("/services", func(r chi.Router) {
				r.Get("/", h.GetMyServices)
				r.Post("/", h.CreateService)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.service)
					r.Get("/", h.GetService)
					r.Patch("/", h.UpdateService)
					r.Delete("/", h.DeleteService)
				})
			})

			r.Route("/time-exclusions", func(r chi.Router) {
				r.Get("/", h.GetMyTimeExclusions)
				r.Post("/", h.CreateTimeExclusion)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.timeExclusion)
					r.Get("/", h.GetTimeExclusion)
					r.Put("/", h.UpdateTimeExclusion)
					r.Delete("/", h.DeleteTimeExclusion)
				})
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", h.GetMyBookings)
				r.Post("/", h.CreateBooking)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.booking)
					r.Get("/", h.GetBooking)
					r.Patch("/status", h.UpdateBookingStatus)
					r.Patch("/schedule", h.RescheduleBooking)
				})
			})
		})
	})
}
