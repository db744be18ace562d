package provider

import (
	"github.com/wuliu-next/internal/cache"
	"github.com/wuliu-next/internal/config"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
	"github.com/wuliu-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	SettingRepo           repository.SettingRepository
	DepartmentRepo        repository.DepartmentRepository
	PermissionRepo        repository.PermissionRepository
	UserRepo              repository.UserRepository
	CustomerRepo          repository.CustomerRepository
	TruckRepo             repository.TruckRepository
	WaybillRepo           repository.WaybillRepository
	WaybillRoutingRepo    repository.WaybillRoutingRepository
	TransportOutRepo      repository.TransportOutRepository
	CargoPricePaymentRepo repository.CargoPricePaymentRepository
	DepartmentPaymentRepo repository.DepartmentPaymentRepository
	CustomerScoreLogRepo  repository.CustomerScoreLogRepository

	// Services
	AuthService              *service.AuthService
	SettingService           *service.SettingService
	DepartmentService        *service.DepartmentService
	UserService              *service.UserService
	CustomerService          *service.CustomerService
	CustomerScoreService     *service.CustomerScoreService
	TruckService             *service.TruckService
	WaybillService           *service.WaybillService
	TransportOutService      *service.TransportOutService
	CargoPricePaymentService *service.CargoPricePaymentService
	DepartmentPaymentService *service.DepartmentPaymentService
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
	c.SettingRepo = repository.NewSettingRepository(db)
	c.DepartmentRepo = repository.NewDepartmentRepository(db)
	c.PermissionRepo = repository.NewPermissionRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.TruckRepo = repository.NewTruckRepository(db)
	c.WaybillRepo = repository.NewWaybillRepository(db)
	c.WaybillRoutingRepo = repository.NewWaybillRoutingRepository(db)
	c.TransportOutRepo = repository.NewTransportOutRepository(db)
	c.CargoPricePaymentRepo = repository.NewCargoPricePaymentRepository(db)
	c.DepartmentPaymentRepo = repository.NewDepartmentPaymentRepository(db)
	c.CustomerScoreLogRepo = repository.NewCustomerScoreLogRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.DepartmentService = service.NewDepartmentService(c.DepartmentRepo, c.UserRepo)
	c.UserService = service.NewUserService(c.UserRepo, c.DepartmentRepo, c.PermissionRepo, c.AuthService)
	c.CustomerService = service.NewCustomerService(c.CustomerRepo)
	c.CustomerScoreService = service.NewCustomerScoreService(c.CustomerRepo, c.CustomerScoreLogRepo)
	c.TruckService = service.NewTruckService(c.TruckRepo)
	c.WaybillService = service.NewWaybillService(
		c.WaybillRepo,
		c.WaybillRoutingRepo,
		c.DepartmentRepo,
		c.CustomerRepo,
		c.CargoPricePaymentRepo,
		c.SettingService,
	)
	c.TransportOutService = service.NewTransportOutService(
		c.TransportOutRepo,
		c.WaybillRepo,
		c.WaybillRoutingRepo,
		c.DepartmentRepo,
		c.TruckRepo,
	)
	c.CargoPricePaymentService = service.NewCargoPricePaymentService(
		c.CargoPricePaymentRepo,
		c.WaybillRepo,
		c.SettingService,
	)
	c.DepartmentPaymentService = service.NewDepartmentPaymentService(
		c.DepartmentPaymentRepo,
		c.WaybillRepo,
		c.CustomerRepo,
		c.CustomerScoreLogRepo,
		c.SettingService,
	)
}
