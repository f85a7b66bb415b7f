package seed

import (
	"fmt"
	"log/slog"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Store 插入演示数据所需的操作，由 repository.Repository 实现
type Store interface {
	CreateProvider(p *domain.Provider) error
	CreateStaffMember(sm *domain.StaffMember) error
	CreateService(svc *domain.Service) error
	CreateTimeExclusion(ex *domain.TimeExclusion) error
}

const DemoUsername = "demo"

func int32Ptr(v int32) *int32 { return &v }

// DemoProvider 周一到周五 09:00-18:00 营业，12:00-13:00 午休
func DemoProvider(passwordHash string, emailDomain string) *domain.Provider {
	return &domain.Provider{
		Username:     DemoUsername,
		PasswordHash: passwordHash,
		Name:         "演示诊所",
		Email:        DemoUsername + "@" + emailDomain,
		Phone:        "+5511912345678",
		Timezone:     "America/Sao_Paulo",
		Schedule: domain.WorkSchedule{
			WorkingDays: []int32{1, 2, 3, 4, 5},
			WorkStart:   9 * 60,
			WorkEnd:     18 * 60,
			BreakStart:  int32Ptr(12 * 60),
			BreakEnd:    int32Ptr(13 * 60),
		},
	}
}

func demoStaffMembers(providerID int64, emailDomain string) []*domain.StaffMember {
	return []*domain.StaffMember{
		{ProviderID: providerID, Name: "李医生", Email: "li@" + emailDomain, IsActive: true},
		{
			ProviderID: providerID,
			Name:       "王医生",
			Email:      "wang@" + emailDomain,
			IsActive:   true,
			// 王医生只在周二和周四下午上班
			Schedule: &domain.WorkSchedule{
				WorkingDays: []int32{2, 4},
				WorkStart:   13 * 60,
				WorkEnd:     18 * 60,
			},
		},
	}
}

func demoServices(providerID int64) []*domain.Service {
	return []*domain.Service{
		{ProviderID: providerID, Name: "初诊", Description: "首次就诊，包含问诊和基础检查", DurationMinutes: 60, Price: 20000, IsActive: true},
		{ProviderID: providerID, Name: "复诊", Description: "复查和调整治疗方案", DurationMinutes: 30, Price: 10000, IsActive: true},
	}
}

func demoTimeExclusions(providerID int64) []*domain.TimeExclusion {
	return []*domain.TimeExclusion{
		{ProviderID: providerID, Name: "周五例会", StartTime: 16 * 60, EndTime: 17 * 60, Weekday: int32Ptr(5), IsActive: true},
		// 默认停用，启用后每天 12:00-13:00 都不可预约
		{ProviderID: providerID, Name: "全天午餐时间", StartTime: 12 * 60, EndTime: 13 * 60, IsActive: false},
	}
}

// SeedDemoProvider 插入一个带员工、服务和屏蔽时段的演示服务商
func SeedDemoProvider(s Store, password string, emailDomain string) (*domain.Provider, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	provider := DemoProvider(string(passwordHash), emailDomain)
	if err := s.CreateProvider(provider); err != nil {
		return nil, fmt.Errorf("插入演示服务商失败: %w", err)
	}

	for _, sm := range demoStaffMembers(provider.ID, emailDomain) {
		if err := s.CreateStaffMember(sm); err != nil {
			return nil, fmt.Errorf("插入员工 %s 失败: %w", sm.Name, err)
		}
	}

	for _, svc := range demoServices(provider.ID) {
		if err := s.CreateService(svc); err != nil {
			return nil, fmt.Errorf("插入服务 %s 失败: %w", svc.Name, err)
		}
	}

	for _, ex := range demoTimeExclusions(provider.ID) {
		if err := s.CreateTimeExclusion(ex); err != nil {
			return nil, fmt.Errorf("插入屏蔽时段 %s 失败: %w", ex.Name, err)
		}
	}

	slog.Info("已插入演示服务商", "providerID", provider.ID, "username", provider.Username)
	return provider, nil
}
