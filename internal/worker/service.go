package worker

import (
	"context"
	"errors"
	"time"

	"github.com/kosku-next/internal/config"
	"github.com/kosku-next/internal/logger"
	"github.com/kosku-next/internal/queue"

	"github.com/hibiken/asynq"
)

const reservationSweepInterval = 5 * time.Minute

// Service 异步队列服务：asynq 消费端加上预留超时的周期清理。
type Service struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server:   asynq.NewServer(opt, serverCfg),
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string { return "worker" }

// Start 启动服务，清理循环随 ctx 取消一同退出。
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.RedemptionService != nil {
		go s.runReservationSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runReservationSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.RedemptionService == nil {
		return
	}
	ttl := s.consumer.reservationTTL()
	runOnce := func() {
		released, err := s.consumer.RedemptionService.ReleaseStaleReservations(ttl, sweepBatchSize)
		if err != nil {
			logger.Warnw("worker_reservation_sweep_failed", "error", err)
			return
		}
		if released > 0 {
			logger.Infow("worker_reservation_sweep", "released", released)
		}
	}
	runOnce()

	ticker := time.NewTicker(reservationSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
