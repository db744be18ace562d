package router

import (
	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/config"
	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/http/handlers"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/provider"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	h := handlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api/v1")
	{
		// 登录接口（无需鉴权）
		api.POST("/auth/login", h.Login)

		// 需要鉴权的接口
		authorized := api.Group("")
		authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			authorized.GET("/auth/me", h.Me)
			authorized.PUT("/auth/password", h.ChangePassword)

			// 系统设置
			authorized.GET("/settings", h.GetSettings)
			authorized.PUT("/settings", RequirePermission(constants.PermManageSettings), h.UpdateSettings)

			// 运单管理
			authorized.GET("/waybills", h.ListWaybills)
			authorized.GET("/waybills/standard-fee", h.GetStandardFee)
			authorized.GET("/waybills/:id", h.GetWaybill)
			authorized.GET("/waybills/:id/routings", h.GetWaybillRoutings)
			authorized.POST("/waybills", RequirePermission(constants.PermManageWaybill), h.CreateWaybill)
			authorized.PUT("/waybills/:id", RequirePermission(constants.PermManageWaybill), h.UpdateWaybill)
			authorized.POST("/waybills/sign-for", RequirePermission(constants.PermManageSignFor), h.SignForWaybills)
			authorized.POST("/waybills/:id/drop", RequirePermission(constants.PermManageDropWaybill), h.DropWaybill)
			authorized.POST("/waybills/:id/return", RequirePermission(constants.PermManageReturnWaybill), h.ReturnWaybill)

			// 运输单管理
			authorized.GET("/transport-outs", h.ListTransportOuts)
			authorized.GET("/transport-outs/:id", h.GetTransportOut)
			authorized.POST("/transport-outs", RequirePermission(constants.PermManageTransportOutAddEditDeleteStart), h.CreateTransportOut)
			authorized.PUT("/transport-outs/:id", RequirePermission(constants.PermManageTransportOutAddEditDeleteStart), h.UpdateTransportOut)
			authorized.DELETE("/transport-outs/:id", RequirePermission(constants.PermManageTransportOutAddEditDeleteStart), h.DeleteTransportOut)
			authorized.POST("/transport-outs/:id/start", RequirePermission(constants.PermManageTransportOutAddEditDeleteStart), h.StartTransportOut)
			authorized.POST("/transport-outs/:id/arrive", RequirePermission(constants.PermManageTransportOutArrived), h.ConfirmTransportOutArrival)

			// 代收货款付款单
			authorized.GET("/cargo-price-payments", h.ListCargoPricePayments)
			authorized.GET("/cargo-price-payments/:id", h.GetCargoPricePayment)
			authorized.POST("/cargo-price-payments", RequirePermission(constants.PermManageCargoPricePaymentAddEditDelete), h.CreateCargoPricePayment)
			authorized.PUT("/cargo-price-payments/:id", RequirePermission(constants.PermManageCargoPricePaymentAddEditDelete), h.UpdateCargoPricePayment)
			authorized.DELETE("/cargo-price-payments/:id", RequirePermission(constants.PermManageCargoPricePaymentAddEditDelete), h.DeleteCargoPricePayment)
			authorized.POST("/cargo-price-payments/:id/submit", RequirePermission(constants.PermManageCargoPricePaymentAddEditDelete), h.SubmitCargoPricePayment)
			authorized.POST("/cargo-price-payments/:id/review", RequirePermission(constants.PermManageCargoPricePaymentReviewReject), h.ReviewCargoPricePayment)
			authorized.POST("/cargo-price-payments/:id/reject", RequirePermission(constants.PermManageCargoPricePaymentReviewReject), h.RejectCargoPricePayment)
			authorized.POST("/cargo-price-payments/:id/pay", RequirePermission(constants.PermManageCargoPricePaymentPay), h.PayCargoPricePayment)

			// 部门结算单
			authorized.GET("/department-payments", h.ListDepartmentPayments)
			authorized.GET("/department-payments/:id", h.GetDepartmentPayment)
			authorized.POST("/department-payments", RequirePermission(constants.PermManageDepartmentPaymentAddDelete), h.CreateDepartmentPayment)
			authorized.DELETE("/department-payments/:id", RequirePermission(constants.PermManageDepartmentPaymentAddDelete), h.DeleteDepartmentPayment)
			authorized.POST("/department-payments/:id/review", RequirePermission(constants.PermManageDepartmentPaymentReview), h.ReviewDepartmentPayment)
			authorized.POST("/department-payments/:id/pay", RequirePermission(constants.PermManageDepartmentPaymentPay), h.PayDepartmentPayment)
			authorized.POST("/department-payments/:id/settle", RequirePermission(constants.PermManageDepartmentPaymentSettle), h.SettleDepartmentPayment)
			authorized.PUT("/department-payments/:id/remark", h.UpdateDepartmentPaymentRemark)

			// 客户管理
			authorized.GET("/customers", h.ListCustomers)
			authorized.GET("/customers/by-phone", h.FindCustomerByPhone)
			authorized.GET("/customers/:id", h.GetCustomer)
			authorized.POST("/customers", RequirePermission(constants.PermManageCustomer), h.CreateCustomer)
			authorized.PUT("/customers/:id", RequirePermission(constants.PermManageCustomer), h.UpdateCustomer)
			authorized.POST("/customers/:id/score", RequirePermission(constants.PermManageCustomerScoreLog), h.AdjustCustomerScore)
			authorized.GET("/customer-score-logs", h.ListCustomerScoreLogs)

			// 车辆管理
			authorized.GET("/trucks", h.ListTrucks)
			authorized.GET("/trucks/:id", h.GetTruck)
			authorized.POST("/trucks", RequirePermission(constants.PermManageTruck), h.CreateTruck)
			authorized.PUT("/trucks/:id", RequirePermission(constants.PermManageTruck), h.UpdateTruck)

			// 部门管理
			authorized.GET("/departments", h.ListDepartments)
			authorized.GET("/departments/all", h.ListAllDepartments)
			authorized.GET("/departments/:id", h.GetDepartment)
			authorized.POST("/departments", RequirePermission(constants.PermManageDepartment), h.CreateDepartment)
			authorized.PUT("/departments/:id", RequirePermission(constants.PermManageDepartment), h.UpdateDepartment)
			authorized.DELETE("/departments/:id", RequirePermission(constants.PermManageDepartment), h.DeleteDepartment)

			// 用户管理
			authorized.GET("/users", RequirePermission(constants.PermManageUser), h.ListUsers)
			authorized.GET("/users/:id", RequirePermission(constants.PermManageUser), h.GetUser)
			authorized.POST("/users", RequirePermission(constants.PermManageUser), h.CreateUser)
			authorized.PUT("/users/:id", RequirePermission(constants.PermManageUser), h.UpdateUser)
			authorized.GET("/permissions", RequirePermission(constants.PermManageUser), h.ListPermissions)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
