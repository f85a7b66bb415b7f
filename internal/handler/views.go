package handler

import (
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/availability"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/utils"
)

// 接口中的时间均以 HH:MM 表示，不直接返回数据库中的分钟数

type providerResponse struct {
	ID        int64                   `json:"id"`
	Username  string                  `json:"username,omitempty"`
	Name      string                  `json:"name"`
	Email     string                  `json:"email,omitempty"`
	Phone     string                  `json:"phone"`
	Timezone  string                  `json:"timezone"`
	Schedule  utils.WorkScheduleInput `json:"schedule"`
	CreatedAt time.Time               `json:"createdAt"`
}

func newProviderResponse(p *domain.Provider) providerResponse {
	return providerResponse{
		ID:        p.ID,
		Username:  p.Username,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Timezone:  p.Timezone,
		Schedule:  utils.FromWorkSchedule(p.Schedule),
		CreatedAt: p.CreatedAt,
	}
}

// newPublicProviderResponse 客户看到的服务商信息，不包含账号相关字段
func newPublicProviderResponse(p *domain.Provider) providerResponse {
	resp := newProviderResponse(p)
	resp.Username = ""
	resp.Email = ""
	return resp
}

type staffMemberResponse struct {
	ID         int64                    `json:"id"`
	ProviderID int64                    `json:"providerID"`
	Name       string                   `json:"name"`
	Email      string                   `json:"email,omitempty"`
	Phone      string                   `json:"phone,omitempty"`
	IsActive   bool                     `json:"isActive"`
	Schedule   *utils.WorkScheduleInput `json:"schedule"`
	CreatedAt  time.Time                `json:"createdAt"`
}

func newStaffMemberResponse(sm *domain.StaffMember) staffMemberResponse {
	resp := staffMemberResponse{
		ID:         sm.ID,
		ProviderID: sm.ProviderID,
		Name:       sm.Name,
		Email:      sm.Email,
		Phone:      sm.Phone,
		IsActive:   sm.IsActive,
		CreatedAt:  sm.CreatedAt,
	}
	if sm.Schedule != nil {
		ws := utils.FromWorkSchedule(*sm.Schedule)
		resp.Schedule = &ws
	}
	return resp
}

func newStaffMemberResponses(members []*domain.StaffMember, public bool) []staffMemberResponse {
	out := make([]staffMemberResponse, 0, len(members))
	for _, sm := range members {
		if public && !sm.IsActive {
			continue
		}
		resp := newStaffMemberResponse(sm)
		if public {
			resp.Email, resp.Phone = "", ""
		}
		out = append(out, resp)
	}
	return out
}

type timeExclusionResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Weekday   *int32    `json:"weekday"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func newTimeExclusionResponse(ex *domain.TimeExclusion) timeExclusionResponse {
	return timeExclusionResponse{
		ID:        ex.ID,
		Name:      ex.Name,
		StartTime: availability.FormatClock(int(ex.StartTime)),
		EndTime:   availability.FormatClock(int(ex.EndTime)),
		Weekday:   ex.Weekday,
		IsActive:  ex.IsActive,
		CreatedAt: ex.CreatedAt,
	}
}
