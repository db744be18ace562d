package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/wuliu-next/internal/config"
	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitPermissions(); err != nil {
		stdLog.Fatalf("Failed to init permissions: %v", err)
	}
	if err := models.InitDefaultAdmin(cfg.Admin.Name, cfg.Admin.Password); err != nil {
		stdLog.Fatalf("Failed to init default admin: %v", err)
	}

	// 全局设置
	var settingCount int64
	models.DB.Model(&models.Setting{}).Count(&settingCount)
	if settingCount == 0 {
		setting := models.Setting{
			CompanyName:        constants.DefaultCompanyName,
			HandlingFeeRatio:   decimal.RequireFromString(constants.DefaultHandlingFeeRatio),
			CustomerScoreRatio: decimal.RequireFromString(constants.DefaultCustomerScoreRatio),
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			stdLog.Fatalf("Failed to create setting: %v", err)
		}
		stdLog.Println("Created global setting")
	}

	// 部门：总公司下挂货场与分支机构分组，分组下挂分支机构
	headOffice := seedDepartment(stdLog, models.Department{Name: "总公司"})
	seedDepartment(stdLog, models.Department{
		Name:      constants.GoodsYardName,
		ParentID:  &headOffice.ID,
		EnableSrc: true,
		EnableDst: true,
	})
	branchGroup := seedDepartment(stdLog, models.Department{
		Name:          "华东分支机构",
		ParentID:      &headOffice.ID,
		IsBranchGroup: true,
	})
	branches := []models.Department{
		{Name: "上海营业部", UnitPrice: decimal.NewFromInt(12), EnableSrc: true, EnableDst: true, EnableCargoPrice: true},
		{Name: "杭州营业部", UnitPrice: decimal.NewFromInt(10), EnableSrc: true, EnableDst: true, EnableCargoPrice: true},
		{Name: "南京营业部", UnitPrice: decimal.NewFromInt(9), EnableSrc: true, EnableDst: true},
	}
	for _, branch := range branches {
		branch.ParentID = &branchGroup.ID
		seedDepartment(stdLog, branch)
	}

	// 车辆
	trucks := []models.Truck{
		{PlateNumber: "沪A12345", DriverName: "张伟", DriverPhone: "13800000001", Enabled: true},
		{PlateNumber: "浙A67890", DriverName: "李强", DriverPhone: "13800000002", Enabled: true},
		{PlateNumber: "苏A24680", DriverName: "王磊", DriverPhone: "13800000003", Enabled: true},
	}
	for _, truck := range trucks {
		var existing models.Truck
		if err := models.DB.Where("plate_number = ?", truck.PlateNumber).First(&existing).Error; err == nil {
			stdLog.Printf("Truck already exists: %s", truck.PlateNumber)
			continue
		}
		if err := models.DB.Create(&truck).Error; err != nil {
			stdLog.Printf("Failed to create truck %s: %v", truck.PlateNumber, err)
			continue
		}
		stdLog.Printf("Created truck: %s", truck.PlateNumber)
	}

	// 客户
	customers := []models.Customer{
		{Name: "陈建国", Phone: "13900000001", Enabled: true, IsVIP: true, Address: "上海市浦东新区张江路 100 号", CredentialNum: "310101199001010011"},
		{Name: "刘芳", Phone: "13900000002", Enabled: true, Address: "杭州市西湖区文三路 50 号"},
		{Name: "赵敏", Phone: "13900000003", Enabled: true, IsVIP: true, Address: "南京市鼓楼区中山北路 8 号", BankName: "中国工商银行", BankNumber: "6222020200012345678"},
	}
	for _, customer := range customers {
		var existing models.Customer
		if err := models.DB.Where("phone = ?", customer.Phone).First(&existing).Error; err == nil {
			stdLog.Printf("Customer already exists: %s", customer.Phone)
			continue
		}
		if err := models.DB.Create(&customer).Error; err != nil {
			stdLog.Printf("Failed to create customer %s: %v", customer.Phone, err)
			continue
		}
		stdLog.Printf("Created customer: %s", customer.Name)
	}

	// 演示业务用户：上海营业部操作员，带运单相关权限
	seedOperator(stdLog, "shanghai_op", "operator123", "上海营业部", []string{
		constants.PermManageWaybill,
		constants.PermManageSignFor,
		constants.PermManageTransportOutAddEditDeleteStart,
		constants.PermManageTransportOutArrived,
		constants.PermManageCustomer,
	})

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 1 Global setting")
	fmt.Println("- 6 Departments (总公司 / 货场 / 分组 / 3 分支机构)")
	fmt.Println("- 3 Trucks")
	fmt.Println("- 3 Customers (2 VIP)")
	fmt.Println("- 1 Administrator + 1 Operator")
}

func seedDepartment(stdLog interface{ Printf(string, ...interface{}) }, dept models.Department) models.Department {
	var existing models.Department
	if err := models.DB.Where("name = ?", dept.Name).First(&existing).Error; err == nil {
		stdLog.Printf("Department already exists: %s", dept.Name)
		return existing
	}
	if err := models.DB.Create(&dept).Error; err != nil {
		stdLog.Printf("Failed to create department %s: %v", dept.Name, err)
		return dept
	}
	stdLog.Printf("Created department: %s", dept.Name)
	return dept
}

func seedOperator(stdLog interface{ Printf(string, ...interface{}) }, name, password, deptName string, permNames []string) {
	var existing models.User
	if err := models.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		stdLog.Printf("User already exists: %s", name)
		return
	}

	var dept models.Department
	if err := models.DB.Where("name = ?", deptName).First(&dept).Error; err != nil {
		stdLog.Printf("Skip user %s: department %s not found", name, deptName)
		return
	}
	var perms []models.Permission
	if err := models.DB.Where("name IN ?", permNames).Find(&perms).Error; err != nil {
		stdLog.Printf("Skip user %s: load permissions failed: %v", name, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Printf("Skip user %s: hash password failed: %v", name, err)
		return
	}
	user := models.User{
		Name:         name,
		PasswordHash: string(hash),
		Enabled:      true,
		DepartmentID: dept.ID,
		Permissions:  perms,
	}
	if err := models.DB.Create(&user).Error; err != nil {
		stdLog.Printf("Failed to create user %s: %v", name, err)
		return
	}
	stdLog.Printf("Created user: %s", name)
}
