package provider

import (
	"github.com/kosku-next/internal/cache"
	"github.com/kosku-next/internal/config"
	"github.com/kosku-next/internal/logger"
	"github.com/kosku-next/internal/models"
	"github.com/kosku-next/internal/queue"
	"github.com/kosku-next/internal/repository"
	"github.com/kosku-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	UserRepo       repository.UserRepository
	BuildingRepo   repository.BuildingRepository
	FloorRepo      repository.FloorRepository
	RoomTypeRepo   repository.RoomTypeRepository
	RoomRepo       repository.RoomRepository
	ContractRepo   repository.ContractRepository
	InvoiceRepo    repository.InvoiceRepository
	PromotionRepo  repository.PromotionRepository
	CouponRepo     repository.PromotionCouponRepository
	RedemptionRepo repository.PromotionRedemptionRepository

	// Services
	AuthService           *service.AuthService
	KostAdminService      *service.KostAdminService
	PromotionAdminService *service.PromotionAdminService
	PromotionEngine       *service.PromotionEngine
	RedemptionService     *service.RedemptionService
	CouponService         *service.CouponService
	ContextService        *service.ContextService
}

// NewContainer 初始化容器。Redis 与队列都是可选依赖，初始化失败
// 只降级（无缓存、无异步任务），不阻塞进程启动。
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.BuildingRepo = repository.NewBuildingRepository(db)
	c.FloorRepo = repository.NewFloorRepository(db)
	c.RoomTypeRepo = repository.NewRoomTypeRepository(db)
	c.RoomRepo = repository.NewRoomRepository(db)
	c.ContractRepo = repository.NewContractRepository(db)
	c.InvoiceRepo = repository.NewInvoiceRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.CouponRepo = repository.NewPromotionCouponRepository(db)
	c.RedemptionRepo = repository.NewPromotionRedemptionRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.KostAdminService = service.NewKostAdminService(c.BuildingRepo, c.FloorRepo, c.RoomTypeRepo, c.RoomRepo)
	c.PromotionAdminService = service.NewPromotionAdminService(c.PromotionRepo, c.CouponRepo, c.QueueClient)
	c.PromotionEngine = service.NewPromotionEngine(c.PromotionRepo, c.CouponRepo)
	c.RedemptionService = service.NewRedemptionService(c.PromotionRepo, c.CouponRepo, c.RedemptionRepo, c.InvoiceRepo, c.QueueClient, c.Config.Promo.ReservationTTLMinutes)
	c.CouponService = service.NewCouponService(c.CouponRepo)
	c.ContextService = service.NewContextService(c.InvoiceRepo, c.ContractRepo, c.RoomRepo, c.UserRepo)
}
