package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc 定义作业执行函数
type JobFunc func(ctx context.Context) error

// Scheduler 作业调度器
type Scheduler struct {
	jobs    []*ScheduledJob
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	logger  *zap.Logger
}

// ScheduledJob 表示一个调度的作业
type ScheduledJob struct {
	name     string
	interval time.Duration // 0 表示只运行一次
	timeout  time.Duration
	fn       JobFunc
}

// NewScheduler 创建调度器
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// RegisterJob 注册周期作业，单次执行超时为 interval/2
func (s *Scheduler) RegisterJob(name string, interval time.Duration, fn JobFunc) {
	if interval <= 0 {
		s.logger.Warn("Skip job with non-positive interval", zap.String("job", name))
		return
	}
	s.register(&ScheduledJob{name: name, interval: interval, timeout: interval / 2, fn: fn})
	s.logger.Info("Registered job", zap.String("job", name), zap.Duration("interval", interval))
}

// RegisterOnceJob 注册启动时运行一次的作业
func (s *Scheduler) RegisterOnceJob(name string, fn JobFunc) {
	s.register(&ScheduledJob{name: name, fn: fn})
	s.logger.Info("Registered once job", zap.String("job", name))
}

func (s *Scheduler) register(job *ScheduledJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// Start 启动调度器
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, job := range s.jobs {
		s.wg.Add(1)
		go func(j *ScheduledJob) {
			defer s.wg.Done()
			if j.interval == 0 {
				s.logger.Info("Running one-time job", zap.String("job", j.name))
				s.executeJob(runCtx, j)
				return
			}
			s.runJob(runCtx, j)
		}(job)
	}
}

// Stop 取消所有作业并等待退出，ctx 到期后不再等待
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.logger.Warn("Stopping scheduler...")

	waitCh := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		s.logger.Info("All jobs stopped successfully")
	case <-ctx.Done():
		s.logger.Warn("Context deadline exceeded while waiting for jobs to stop")
	}
}

// runJob 立即运行一次，然后按 interval 循环
func (s *Scheduler) runJob(ctx context.Context, job *ScheduledJob) {
	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	s.executeJob(ctx, job)
	for {
		select {
		case <-ticker.C:
			s.executeJob(ctx, job)
		case <-ctx.Done():
			s.logger.Info("Stopping job", zap.String("job", job.name))
			return
		}
	}
}

// executeJob 执行作业，panic 转为错误日志
func (s *Scheduler) executeJob(ctx context.Context, job *ScheduledJob) {
	jobCtx := ctx
	if job.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, job.timeout)
		defer cancel()
	}

	startTime := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return job.fn(jobCtx)
	}()

	if err != nil {
		s.logger.Error("Job execution failed",
			zap.String("job", job.name),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.logger.Debug("Job execution completed",
		zap.String("job", job.name),
		zap.Duration("duration", time.Since(startTime)))
}
