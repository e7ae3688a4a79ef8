package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Service 可托管的长生命周期组件。Start 阻塞直到退出或 ctx 取消，
// Stop 在收到停止信号后负责优雅收尾。
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并行托管一组 Service：任意一个退出即触发整体停止。
type Runner struct {
	services []Service
	log      *zap.SugaredLogger
}

// NewRunner 创建运行器
func NewRunner(log *zap.SugaredLogger, services ...Service) *Runner {
	return &Runner{services: services, log: log}
}

// Run 启动全部服务并等待第一个退出原因，随后在 stopTimeout 内
// 逐个停止其余服务。ctx 取消（通常来自进程信号）视为正常退出。
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exitCh := make(chan error, len(r.services))
	for _, svc := range r.services {
		go r.runService(runCtx, svc, exitCh)
	}

	var cause error
	select {
	case <-runCtx.Done():
		cause = runCtx.Err()
	case cause = <-exitCh:
	}
	cancel()

	r.stopAll(stopTimeout)

	if errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}

func (r *Runner) runService(ctx context.Context, svc Service, exitCh chan<- error) {
	if svc == nil {
		exitCh <- errors.New("service is nil")
		return
	}
	if r.log != nil {
		r.log.Infow("service_start", "service", svc.Name())
	}
	err := svc.Start(ctx)
	if r.log != nil {
		r.log.Infow("service_exit", "service", svc.Name(), "error", err)
	}
	exitCh <- err
}

func (r *Runner) stopAll(stopTimeout time.Duration) {
	if stopTimeout <= 0 {
		stopTimeout = defaultShutdownTimeout
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()

	for _, svc := range r.services {
		if svc == nil {
			continue
		}
		if err := svc.Stop(stopCtx); err != nil && r.log != nil {
			r.log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}
