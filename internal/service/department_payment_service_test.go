package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

type departmentPaymentTestEnv struct {
	svc        *DepartmentPaymentService
	db         *gorm.DB
	shanghai   *models.Department
	hangzhou   *models.Department
	headOffice *models.Department
	vip        *models.Customer
	normal     *models.Customer
	yesterday  time.Time
}

func setupDepartmentPaymentServiceTest(t *testing.T) *departmentPaymentTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:department_payment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Department{},
		&models.Customer{},
		&models.CustomerScoreLog{},
		&models.Setting{},
		&models.Truck{},
		&models.Waybill{},
		&models.TransportOut{},
		&models.DepartmentPayment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	env := &departmentPaymentTestEnv{db: db, yesterday: time.Now().AddDate(0, 0, -1)}
	env.shanghai = seedWaybillDept(t, db, "上海营业部", "12", true, true, true)
	env.hangzhou = seedWaybillDept(t, db, "杭州营业部", "10", true, true, true)
	env.headOffice = seedWaybillDept(t, db, "总公司", "0", false, false, false)

	env.vip = &models.Customer{Name: "陈建国", Phone: "13800000001", Enabled: true, IsVIP: true}
	env.normal = &models.Customer{Name: "刘芳", Phone: "13800000002", Enabled: true}
	if err := db.Create(env.vip).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	if err := db.Create(env.normal).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	settingSvc := NewSettingService(repository.NewSettingRepository(db))
	if _, err := settingSvc.EnsureDefaults(); err != nil {
		t.Fatalf("ensure settings failed: %v", err)
	}
	env.svc = NewDepartmentPaymentService(
		repository.NewDepartmentPaymentRepository(db),
		repository.NewWaybillRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewCustomerScoreLogRepository(db),
		settingSvc,
	)
	return env
}

// seedDispatchedNow 落一张昨日现付发车的运单并挂上已发车车次
func (env *departmentPaymentTestEnv) seedDispatchedNow(t *testing.T, customerID uint, fee int64) *models.Waybill {
	t.Helper()
	waybill := models.Waybill{
		SrcDepartmentID: env.shanghai.ID,
		DstDepartmentID: env.hangzhou.ID,
		SrcCustomerID:   &customerID,
		CargoName:       "建材",
		CargoNum:        1,
		CargoVolume:     decimal.NewFromInt(1),
		CargoWeight:     decimal.NewFromInt(1),
		Fee:             models.NewMoneyFromInt(fee),
		FeeType:         constants.FeeTypeNow,
		Status:          constants.WaybillStatusDeparted,
	}
	if err := env.db.Create(&waybill).Error; err != nil {
		t.Fatalf("create waybill failed: %v", err)
	}
	transportOut := models.TransportOut{
		TruckID:         1,
		SrcDepartmentID: env.shanghai.ID,
		DstDepartmentID: env.hangzhou.ID,
		Status:          constants.TransportOutStatusOnTheWay,
		StartTime:       &env.yesterday,
	}
	if err := env.db.Create(&transportOut).Error; err != nil {
		t.Fatalf("create transport out failed: %v", err)
	}
	if err := env.db.Model(&transportOut).Association("Waybills").Append(&waybill); err != nil {
		t.Fatalf("append waybill failed: %v", err)
	}
	return &waybill
}

// seedSignedForAt 落一张昨日在上海签收的提付运单
func (env *departmentPaymentTestEnv) seedSignedForAt(t *testing.T, customerID uint, fee, cargoPrice int64) *models.Waybill {
	t.Helper()
	waybill := models.Waybill{
		SrcDepartmentID: env.hangzhou.ID,
		DstDepartmentID: env.shanghai.ID,
		SrcCustomerID:   &customerID,
		CargoName:       "五金",
		CargoNum:        1,
		CargoVolume:     decimal.NewFromInt(1),
		CargoWeight:     decimal.NewFromInt(1),
		Fee:             models.NewMoneyFromInt(fee),
		FeeType:         constants.FeeTypeSignFor,
		CargoPrice:      models.NewMoneyFromInt(cargoPrice),
		Status:          constants.WaybillStatusSignedFor,
		SignForTime:     &env.yesterday,
	}
	if err := env.db.Create(&waybill).Error; err != nil {
		t.Fatalf("create waybill failed: %v", err)
	}
	return &waybill
}

func (env *departmentPaymentTestEnv) actor() Actor {
	return Actor{UserID: 9, DepartmentID: env.headOffice.ID}
}

func TestDepartmentPaymentAdd(t *testing.T) {
	env := setupDepartmentPaymentServiceTest(t)
	env.seedDispatchedNow(t, env.vip.ID, 100)
	env.seedSignedForAt(t, env.normal.ID, 200, 1000)

	payment, err := env.svc.Add(env.actor(), env.shanghai.ID, env.yesterday)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if payment.DstDepartmentID != env.headOffice.ID {
		t.Fatalf("dst department = %d, want actor department", payment.DstDepartmentID)
	}
	if len(payment.Waybills) != 2 {
		t.Fatalf("members = %d, want 2", len(payment.Waybills))
	}

	got, err := env.svc.Get(payment.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	totals := env.svc.Totals(got, got.Waybills)
	if !totals.FeeNow.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("fee now = %s, want 100", totals.FeeNow)
	}
	if !totals.FeeSignFor.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("fee sign for = %s, want 200", totals.FeeSignFor)
	}
	if !totals.CargoPrice.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("cargo price = %s, want 1000", totals.CargoPrice)
	}
	if !totals.Total.Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("total = %s, want 1300", totals.Total)
	}
}

func TestDepartmentPaymentAddValidation(t *testing.T) {
	env := setupDepartmentPaymentServiceTest(t)
	actor := env.actor()

	// 结算日期必须早于今天
	if _, err := env.svc.Add(actor, env.shanghai.ID, time.Now()); !errors.Is(err, ErrDepartmentPaymentDateInvalid) {
		t.Fatalf("today err = %v, want ErrDepartmentPaymentDateInvalid", err)
	}
	if _, err := env.svc.Add(actor, env.shanghai.ID, time.Now().AddDate(0, 0, 1)); !errors.Is(err, ErrDepartmentPaymentDateInvalid) {
		t.Fatalf("tomorrow err = %v, want ErrDepartmentPaymentDateInvalid", err)
	}

	// 同部门同日期只允许一张
	if _, err := env.svc.Add(actor, env.shanghai.ID, env.yesterday); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := env.svc.Add(actor, env.shanghai.ID, env.yesterday); !errors.Is(err, ErrDepartmentPaymentDuplicate) {
		t.Fatalf("duplicate err = %v, want ErrDepartmentPaymentDuplicate", err)
	}
	// 其他部门同日期不受影响
	if _, err := env.svc.Add(actor, env.hangzhou.ID, env.yesterday); err != nil {
		t.Fatalf("add for other department failed: %v", err)
	}
}

func TestDepartmentPaymentSettle(t *testing.T) {
	env := setupDepartmentPaymentServiceTest(t)
	actor := env.actor()
	wVIP := env.seedDispatchedNow(t, env.vip.ID, 100)
	env.seedSignedForAt(t, env.normal.ID, 200, 1000)

	payment, err := env.svc.Add(actor, env.shanghai.ID, env.yesterday)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// 未付款不可核对
	if err := env.svc.Settle(actor, payment.ID); !errors.Is(err, ErrDepartmentPaymentStatusInvalid) {
		t.Fatalf("settle before pay err = %v, want ErrDepartmentPaymentStatusInvalid", err)
	}
	if err := env.svc.Review(actor, payment.ID); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	// 确认付款只能由付款方（src 部门）经手
	if err := env.svc.Pay(actor, payment.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("outsider pay err = %v, want ErrPermissionDenied", err)
	}
	payer := Actor{UserID: 11, DepartmentID: env.shanghai.ID}
	if err := env.svc.Pay(payer, payment.ID); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if err := env.svc.Settle(actor, payment.ID); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	got, err := env.svc.Get(payment.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != constants.DepartmentPaymentStatusSettled || got.SettleTime == nil {
		t.Fatalf("settled payment = %d / %v", got.Status, got.SettleTime)
	}

	// VIP 发货客户按积分比例 1 得 100 分，普通客户不计分
	var vip models.Customer
	if err := env.db.First(&vip, env.vip.ID).Error; err != nil {
		t.Fatalf("load customer failed: %v", err)
	}
	if vip.Score != 100 {
		t.Fatalf("vip score = %d, want 100", vip.Score)
	}
	var normal models.Customer
	if err := env.db.First(&normal, env.normal.ID).Error; err != nil {
		t.Fatalf("load customer failed: %v", err)
	}
	if normal.Score != 0 {
		t.Fatalf("normal score = %d, want 0", normal.Score)
	}

	// 积分流水与运单一一对应
	var logs []models.CustomerScoreLog
	if err := env.db.Find(&logs).Error; err != nil {
		t.Fatalf("load logs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("log rows = %d, want 1", len(logs))
	}
	if logs[0].WaybillID == nil || *logs[0].WaybillID != wVIP.ID || logs[0].Score != 100 {
		t.Fatalf("log = %+v", logs[0])
	}

	// 已核对后不可重复核对
	if err := env.svc.Settle(actor, payment.ID); !errors.Is(err, ErrDepartmentPaymentStatusInvalid) {
		t.Fatalf("double settle err = %v, want ErrDepartmentPaymentStatusInvalid", err)
	}
}

func TestDepartmentPaymentSettleSkipsIssuedWaybill(t *testing.T) {
	env := setupDepartmentPaymentServiceTest(t)
	actor := env.actor()
	w := env.seedDispatchedNow(t, env.vip.ID, 100)

	// 运单此前已发过积分
	existing := models.CustomerScoreLog{
		CustomerID:      env.vip.ID,
		Increase:        true,
		Score:           100,
		Reason:          "历史发放",
		WaybillID:       &w.ID,
		OperationUserID: 1,
	}
	if err := env.db.Create(&existing).Error; err != nil {
		t.Fatalf("create log failed: %v", err)
	}

	payment, err := env.svc.Add(actor, env.shanghai.ID, env.yesterday)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := env.svc.Review(actor, payment.ID); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if err := env.svc.Pay(Actor{UserID: 11, DepartmentID: env.shanghai.ID}, payment.ID); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if err := env.svc.Settle(actor, payment.ID); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	var vip models.Customer
	if err := env.db.First(&vip, env.vip.ID).Error; err != nil {
		t.Fatalf("load customer failed: %v", err)
	}
	if vip.Score != 0 {
		t.Fatalf("vip score = %d, want 0 (already issued)", vip.Score)
	}
}

func TestDepartmentPaymentDelete(t *testing.T) {
	env := setupDepartmentPaymentServiceTest(t)
	actor := env.actor()

	payment, err := env.svc.Add(actor, env.shanghai.ID, env.yesterday)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := env.svc.Review(actor, payment.ID); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	// 已审核后不可删除
	if err := env.svc.Delete(actor, payment.ID); !errors.Is(err, ErrDepartmentPaymentStatusInvalid) {
		t.Fatalf("delete reviewed err = %v, want ErrDepartmentPaymentStatusInvalid", err)
	}

	second, err := env.svc.Add(actor, env.shanghai.ID, env.yesterday.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := env.svc.Delete(actor, second.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := env.svc.Get(second.ID); !errors.Is(err, ErrDepartmentPaymentNotFound) {
		t.Fatalf("get deleted err = %v, want ErrDepartmentPaymentNotFound", err)
	}
}

func TestDepartmentPaymentUpdateRemark(t *testing.T) {
	env := setupDepartmentPaymentServiceTest(t)

	payment, err := env.svc.Add(env.actor(), env.shanghai.ID, env.yesterday)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	srcActor := Actor{UserID: 2, DepartmentID: env.shanghai.ID}
	if err := env.svc.UpdateRemark(srcActor, payment.ID, "我方已对账"); err != nil {
		t.Fatalf("src remark failed: %v", err)
	}
	dstActor := Actor{UserID: 3, DepartmentID: env.headOffice.ID}
	if err := env.svc.UpdateRemark(dstActor, payment.ID, "收款确认"); err != nil {
		t.Fatalf("dst remark failed: %v", err)
	}
	outsider := Actor{UserID: 4, DepartmentID: env.hangzhou.ID}
	if err := env.svc.UpdateRemark(outsider, payment.ID, "无关方"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("outsider err = %v, want ErrPermissionDenied", err)
	}

	got, err := env.svc.Get(payment.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.SrcRemark != "我方已对账" || got.DstRemark != "收款确认" {
		t.Fatalf("remarks = %q / %q", got.SrcRemark, got.DstRemark)
	}
}
