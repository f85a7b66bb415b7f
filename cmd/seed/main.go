package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/config"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/repository"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/seed"
	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var providerID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机服务商, 2: 插入随机员工, 3: 插入随机服务, 4: 插入随机屏蔽时段, 5: 插入演示服务商)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&providerID, "provider-id", 0, "员工、服务和屏蔽时段所属的服务商 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	// 员工、服务和屏蔽时段都需要先确认服务商存在
	requireProvider := func() bool {
		if providerID <= 0 {
			slog.Error("请输入合法的服务商 ID")
			return false
		}
		if _, err := repo.GetProviderByID(providerID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的服务商不存在", slog.Int64("provider_id", providerID))
			default:
				slog.Error("无法获取服务商", slog.String("error", err.Error()))
			}
			return false
		}
		return true
	}

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的服务商数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				p, err := utils.GenerateRandomProvider(cfg.Seed.Provider.Password, cfg.Seed.Provider.EmailDomain)
				if err != nil {
					slog.Error("无法生成随机服务商", slog.String("error", err.Error()))
					continue
				}
				if err := utils.ValidateWorkSchedule(&p.Schedule); err != nil {
					slog.Error("生成的营业时间非法", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateProvider(p); err != nil {
					slog.Error("无法插入服务商", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入服务商成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
		} else if requireProvider() {
			cnt := n
			for i := 0; i < n; i++ {
				sm := utils.GenerateRandomStaffMember(providerID, cfg.Seed.Provider.EmailDomain)
				if sm.Schedule != nil {
					if err := utils.ValidateWorkSchedule(sm.Schedule); err != nil {
						slog.Error("生成的员工工作时间非法", slog.String("error", err.Error()))
						continue
					}
				}

				if err := repo.CreateStaffMember(sm); err != nil {
					slog.Error("无法插入员工", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入员工成功", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的服务数量")
		} else if requireProvider() {
			cnt := n
			for i := 0; i < n; i++ {
				svc := utils.GenerateRandomService(providerID)
				if err := repo.CreateService(svc); err != nil {
					slog.Error("无法插入服务", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入服务成功", slog.Int("count", n-cnt))
		}
	case 4:
		if n <= 0 {
			slog.Error("请输入合法的屏蔽时段数量")
		} else if requireProvider() {
			existing, err := repo.GetTimeExclusionsByProviderID(providerID)
			if err != nil {
				slog.Error("无法获取已有的屏蔽时段", slog.String("error", err.Error()))
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				ex := utils.GenerateRandomTimeExclusion(providerID)
				if err := utils.ValidateTimeExclusion(ex); err != nil {
					slog.Error("生成的屏蔽时段非法", slog.String("error", err.Error()))
					continue
				}
				// 与已有时段重叠的直接跳过
				if other := utils.FindOverlappingExclusion(existing, ex); other != nil {
					slog.Warn("随机屏蔽时段与已有时段重叠，跳过", slog.String("name", ex.Name), slog.String("overlap", other.Name))
					continue
				}

				if err := repo.CreateTimeExclusion(ex); err != nil {
					slog.Error("无法插入屏蔽时段", slog.String("error", err.Error()))
					continue
				}

				existing = append(existing, ex)
				cnt--
			}

			slog.Info("插入屏蔽时段成功", slog.Int("count", n-cnt))
		}
	case 5:
		if _, err := seed.SeedDemoProvider(repo, cfg.Seed.Provider.Password, cfg.Seed.Provider.EmailDomain); err != nil {
			slog.Error("无法插入演示服务商", slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
