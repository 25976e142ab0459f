package provider

import (
	"github.com/choviet-next/internal/cache"
	"github.com/choviet-next/internal/config"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/models"
	"github.com/choviet-next/internal/repository"
	"github.com/choviet-next/internal/service"
	"github.com/choviet-next/internal/storage/pinata"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	UserRepo     repository.UserRepository
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	CartRepo     repository.CartRepository
	OrderRepo    repository.OrderRepository
	PaymentRepo  repository.PaymentRepository
	StatsRepo    repository.StatsRepository

	// Services
	AuthService       *service.AuthService
	UserService       *service.UserService
	CategoryService   *service.CategoryService
	ProductService    *service.ProductService
	CartService       *service.CartService
	OrderService      *service.OrderService
	OrderStatsService *service.OrderStatsService
	PaymentService    *service.PaymentService
	UploadService     *service.UploadService

	// 外部设施
	FileStore *pinata.Client
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.StatsRepo = repository.NewStatsRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	db := models.DB

	c.FileStore = pinata.New(pinata.Config{
		JWT:        cfg.Pinata.JWT,
		APIBase:    cfg.Pinata.APIBase,
		GatewayURL: cfg.Pinata.GatewayURL,
		TimeoutMS:  cfg.Pinata.TimeoutMS,
	})

	c.AuthService = service.NewAuthService(cfg, c.UserRepo)
	c.UserService = service.NewUserService(cfg, c.UserRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryService, c.FileStore)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.OrderService = service.NewOrderService(db, c.OrderRepo, c.ProductRepo, c.CartRepo, cfg.Order.ShippingFee)
	c.OrderStatsService = service.NewOrderStatsService(c.StatsRepo)
	c.PaymentService = service.NewPaymentService(db, cfg, c.OrderRepo, c.ProductRepo, c.PaymentRepo)
	c.UploadService = service.NewUploadService(cfg, c.FileStore)
}
