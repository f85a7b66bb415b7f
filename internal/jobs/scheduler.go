package jobs

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var (
	ErrEmptyJobName  = errors.New("任务名称不能为空")
	ErrEmptyCronExpr = errors.New("cron 表达式不能为空")
)

// Scheduler 对 gocron 的简单封装，任务 panic 时只记录日志
type Scheduler struct {
	scheduler gocron.Scheduler
	stopOnce  sync.Once
	stopErr   error
}

func NewScheduler() (*Scheduler, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					slog.Error("定时任务发生 panic", "jobID", jobID.String(), "jobName", jobName, "panic", recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	return &Scheduler{scheduler: sched}, nil
}

func (s *Scheduler) Start() {
	slog.Info("定时任务开始运行", "jobs", len(s.scheduler.Jobs()))
	s.scheduler.Start()
}

// Stop 停止调度并等待正在运行的任务结束，可以重复调用
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() {
		slog.Info("正在停止定时任务")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob 注册一个按 cron 表达式（五段式）执行的任务，同一个任务不会并发执行
func (s *Scheduler) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	wrappedTask := func() {
		slog.Debug("定时任务开始", "jobName", name)
		task()
		slog.Debug("定时任务结束", "jobName", name)
	}

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(wrappedTask),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	slog.Info("已注册定时任务", "jobName", name, "cron", cronExpr)
	return job, nil
}
