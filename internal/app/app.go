package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kosku-next/internal/config"
	"github.com/kosku-next/internal/logger"
	"github.com/kosku-next/internal/provider"
	"github.com/kosku-next/internal/router"
	"github.com/kosku-next/internal/worker"

	"go.uber.org/zap"
)

// 启动模式：all 同进程跑 API 与 worker，api / worker 各自单独跑。
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// Run 应用启动入口：按模式组装服务并阻塞运行至进程信号或服务退出。
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}

	services, err := buildServices(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode,
	)
	return NewRunner(opts.Logger, services...).Run(ctx, opts.ShutdownTimeout)
}

// buildServices 按启动模式装配服务列表，依赖统一经 provider 容器注入。
func buildServices(cfg *config.Config, mode string) ([]Service, error) {
	container := provider.NewContainer(cfg)

	var services []Service
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Host+":"+cfg.Server.Port, engine))
	}
	if mode == ModeAll || mode == ModeWorker {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	if len(services) == 0 {
		return nil, errors.New("no services for mode: " + mode)
	}
	return services, nil
}

// HTTPService 将 *http.Server 适配为可托管服务。
type HTTPService struct {
	server *http.Server
}

// NewHTTPService 创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{
		server: &http.Server{Addr: addr, Handler: handler},
	}
}

// Name 服务名称
func (s *HTTPService) Name() string { return "http" }

// Start 监听并服务请求，Shutdown 触发的关闭不算错误。
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭 HTTP 服务
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
