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

type waybillTestEnv struct {
	svc      *WaybillService
	db       *gorm.DB
	shanghai *models.Department
	hangzhou *models.Department
	nanjing  *models.Department // 未开通代收货款
	office   *models.Department // 不收不发
	sender   *models.Customer
	receiver *models.Customer
}

func setupWaybillServiceTest(t *testing.T) *waybillTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:waybill_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Department{},
		&models.Customer{},
		&models.Setting{},
		&models.Waybill{},
		&models.WaybillRouting{},
		&models.CargoPricePayment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	env := &waybillTestEnv{db: db}
	env.shanghai = seedWaybillDept(t, db, "上海营业部", "12", true, true, true)
	env.hangzhou = seedWaybillDept(t, db, "杭州营业部", "10", true, true, true)
	env.nanjing = seedWaybillDept(t, db, "南京营业部", "9", true, true, false)
	env.office = seedWaybillDept(t, db, "总公司", "0", false, false, false)
	env.sender = seedWaybillCustomer(t, db, "陈建国", "13800000001")
	env.receiver = seedWaybillCustomer(t, db, "刘芳", "13800000002")

	settingSvc := NewSettingService(repository.NewSettingRepository(db))
	if _, err := settingSvc.EnsureDefaults(); err != nil {
		t.Fatalf("ensure settings failed: %v", err)
	}
	env.svc = NewWaybillService(
		repository.NewWaybillRepository(db),
		repository.NewWaybillRoutingRepository(db),
		repository.NewDepartmentRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewCargoPricePaymentRepository(db),
		settingSvc,
	)
	return env
}

func seedWaybillDept(t *testing.T, db *gorm.DB, name, unitPrice string, src, dst, cargoPrice bool) *models.Department {
	t.Helper()
	dept := models.Department{
		Name:             name,
		UnitPrice:        decimal.RequireFromString(unitPrice),
		EnableSrc:        src,
		EnableDst:        dst,
		EnableCargoPrice: cargoPrice,
	}
	if err := db.Create(&dept).Error; err != nil {
		t.Fatalf("create department failed: %v", err)
	}
	return &dept
}

func seedWaybillCustomer(t *testing.T, db *gorm.DB, name, phone string) *models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:          name,
		Phone:         phone,
		Enabled:       true,
		CredentialNum: "310101199001011234",
		Address:       "上海市静安区某路1号",
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return &customer
}

func (env *waybillTestEnv) input() WaybillInput {
	return WaybillInput{
		DstDepartmentID: env.hangzhou.ID,
		SrcCustomerID:   env.sender.ID,
		DstCustomerID:   env.receiver.ID,
		CargoName:       "建材",
		CargoNum:        10,
		CargoVolume:     decimal.NewFromInt(2),
		CargoWeight:     decimal.NewFromInt(3),
		CargoPrice:      models.NewMoneyFromInt(10000),
		Fee:             models.NewMoneyFromInt(120),
		FeeType:         constants.FeeTypeSignFor,
	}
}

func (env *waybillTestEnv) actor() Actor {
	return Actor{UserID: 1, DepartmentID: env.shanghai.ID}
}

func TestWaybillCreate(t *testing.T) {
	env := setupWaybillServiceTest(t)

	waybill, err := env.svc.Create(env.actor(), env.input())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if waybill.SrcDepartmentID != env.shanghai.ID {
		t.Fatalf("src department = %d, want actor department %d", waybill.SrcDepartmentID, env.shanghai.ID)
	}
	if waybill.Status != constants.WaybillStatusCreated {
		t.Fatalf("status = %d, want created", waybill.Status)
	}
	// 客户信息落快照
	if waybill.SrcCustomerName != "陈建国" || waybill.DstCustomerName != "刘芳" {
		t.Fatalf("customer snapshots = %q / %q", waybill.SrcCustomerName, waybill.DstCustomerName)
	}
	if waybill.DstCustomerAddress != env.receiver.Address {
		t.Fatalf("address snapshot = %q", waybill.DstCustomerAddress)
	}
	if waybill.SrcCustomerCredentialNum != env.sender.CredentialNum || waybill.SrcCustomerAddress != env.sender.Address {
		t.Fatalf("src snapshots = %q / %q", waybill.SrcCustomerCredentialNum, waybill.SrcCustomerAddress)
	}
	// 手续费由服务端按比例推算：ceil(10000 × 0.002) = 20
	if !waybill.CargoHandlingFee.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("handling fee = %s, want 20", waybill.CargoHandlingFee)
	}
	if waybill.CargoPriceStatus != constants.CargoPriceStatusNotPaid {
		t.Fatalf("cargo price status = %d, want not paid", waybill.CargoPriceStatus)
	}

	routings, err := env.svc.Routings(waybill.ID)
	if err != nil {
		t.Fatalf("routings failed: %v", err)
	}
	if len(routings) != 1 || routings[0].OperationType != constants.WaybillStatusCreated {
		t.Fatalf("routings = %+v", routings)
	}
}

func TestWaybillCreateValidation(t *testing.T) {
	env := setupWaybillServiceTest(t)
	actor := env.actor()

	input := env.input()
	input.DstDepartmentID = env.shanghai.ID
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrWaybillSrcDstSame) {
		t.Fatalf("same dst err = %v, want ErrWaybillSrcDstSame", err)
	}

	input = env.input()
	input.DstDepartmentID = env.office.ID
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrWaybillDstDisabled) {
		t.Fatalf("dst disabled err = %v, want ErrWaybillDstDisabled", err)
	}

	officeActor := Actor{UserID: 1, DepartmentID: env.office.ID}
	if _, err := env.svc.Create(officeActor, env.input()); !errors.Is(err, ErrWaybillSrcDisabled) {
		t.Fatalf("src disabled err = %v, want ErrWaybillSrcDisabled", err)
	}

	input = env.input()
	input.CargoNum = 0
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrWaybillInvalidField) {
		t.Fatalf("cargo num err = %v, want ErrWaybillInvalidField", err)
	}

	input = env.input()
	input.CargoWeight = decimal.RequireFromString("0.05")
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrWaybillInvalidField) {
		t.Fatalf("cargo weight err = %v, want ErrWaybillInvalidField", err)
	}

	input = env.input()
	input.Fee = models.NewMoneyFromInt(0)
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrWaybillInvalidField) {
		t.Fatalf("fee err = %v, want ErrWaybillInvalidField", err)
	}

	// 收货部门未开通代收货款
	input = env.input()
	input.DstDepartmentID = env.nanjing.ID
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrWaybillCargoPriceDisabled) {
		t.Fatalf("cargo price disabled err = %v, want ErrWaybillCargoPriceDisabled", err)
	}

	// 扣付运费不得超过代收货款
	input = env.input()
	input.FeeType = constants.FeeTypeDeduction
	input.Fee = models.NewMoneyFromInt(10001)
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrWaybillDeductionExceeds) {
		t.Fatalf("deduction err = %v, want ErrWaybillDeductionExceeds", err)
	}

	// 人工录入的手续费与服务端推算不符
	input = env.input()
	wrongFee := models.NewMoneyFromInt(19)
	input.CargoHandlingFee = &wrongFee
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrWaybillHandlingFeeMismatch) {
		t.Fatalf("handling fee err = %v, want ErrWaybillHandlingFeeMismatch", err)
	}

	input = env.input()
	input.DstCustomerID = 9999
	if _, err := env.svc.Create(actor, input); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("missing customer err = %v, want ErrCustomerNotFound", err)
	}
}

func TestWaybillUpdate(t *testing.T) {
	env := setupWaybillServiceTest(t)
	actor := env.actor()

	waybill, err := env.svc.Create(actor, env.input())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 其它部门无权编辑
	outsider := Actor{UserID: 2, DepartmentID: env.hangzhou.ID}
	input := env.input()
	input.CargoName = "五金"
	if _, err := env.svc.Update(outsider, waybill.ID, input); !errors.Is(err, ErrWaybillDeptScope) {
		t.Fatalf("scope err = %v, want ErrWaybillDeptScope", err)
	}

	// 管理员不受部门限制
	admin := Actor{UserID: 3, DepartmentID: env.office.ID, IsAdministrator: true}
	updated, err := env.svc.Update(admin, waybill.ID, input)
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.CargoName != "五金" {
		t.Fatalf("cargo name = %q, want 五金", updated.CargoName)
	}

	// 已装车后不可编辑
	if err := env.db.Model(&models.Waybill{}).Where("id = ?", waybill.ID).
		Update("status", constants.WaybillStatusLoaded).Error; err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if _, err := env.svc.Update(actor, waybill.ID, input); !errors.Is(err, ErrWaybillStatusInvalid) {
		t.Fatalf("loaded update err = %v, want ErrWaybillStatusInvalid", err)
	}
}

func TestWaybillSignFor(t *testing.T) {
	env := setupWaybillServiceTest(t)

	first, err := env.svc.Create(env.actor(), env.input())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := env.svc.Create(env.actor(), env.input())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	ids := []uint{first.ID, second.ID}

	receiver := Actor{UserID: 5, DepartmentID: env.hangzhou.ID}
	if err := env.svc.SignFor(receiver, ids, "刘芳", "330101199202022345"); !errors.Is(err, ErrWaybillStatusInvalid) {
		t.Fatalf("sign before arrival err = %v, want ErrWaybillStatusInvalid", err)
	}

	if err := env.db.Model(&models.Waybill{}).Where("id IN ?", ids).
		Update("status", constants.WaybillStatusArrived).Error; err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	if err := env.svc.SignFor(receiver, ids, "", ""); !errors.Is(err, ErrWaybillInvalidField) {
		t.Fatalf("empty name err = %v, want ErrWaybillInvalidField", err)
	}
	if err := env.svc.SignFor(receiver, ids, "刘芳", ""); !errors.Is(err, ErrWaybillInvalidField) {
		t.Fatalf("empty credential err = %v, want ErrWaybillInvalidField", err)
	}
	sender := Actor{UserID: 5, DepartmentID: env.shanghai.ID}
	if err := env.svc.SignFor(sender, ids, "刘芳", "330101199202022345"); !errors.Is(err, ErrWaybillDeptScope) {
		t.Fatalf("wrong dept err = %v, want ErrWaybillDeptScope", err)
	}

	if err := env.svc.SignFor(receiver, ids, "刘芳", "330101199202022345"); err != nil {
		t.Fatalf("sign for failed: %v", err)
	}

	for _, id := range ids {
		got, err := env.svc.Get(id)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Status != constants.WaybillStatusSignedFor {
			t.Fatalf("status = %d, want signed for", got.Status)
		}
		if got.SignForTime == nil || got.SignForName != "刘芳" {
			t.Fatalf("sign-for fields = %v / %q", got.SignForTime, got.SignForName)
		}
	}

	routings, err := env.svc.Routings(first.ID)
	if err != nil {
		t.Fatalf("routings failed: %v", err)
	}
	last := routings[len(routings)-1]
	if last.OperationType != constants.WaybillStatusSignedFor {
		t.Fatalf("last routing type = %d", last.OperationType)
	}
	if last.Metadata["sign_for_name"] != "刘芳" {
		t.Fatalf("routing metadata = %+v", last.Metadata)
	}
}

func TestWaybillDrop(t *testing.T) {
	env := setupWaybillServiceTest(t)
	actor := env.actor()

	waybill, err := env.svc.Create(actor, env.input())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := env.svc.Drop(actor, waybill.ID, ""); !errors.Is(err, ErrWaybillInvalidField) {
		t.Fatalf("empty reason err = %v, want ErrWaybillInvalidField", err)
	}
	outsider := Actor{UserID: 2, DepartmentID: env.hangzhou.ID}
	if err := env.svc.Drop(outsider, waybill.ID, "填错了"); !errors.Is(err, ErrWaybillDeptScope) {
		t.Fatalf("scope err = %v, want ErrWaybillDeptScope", err)
	}

	if err := env.svc.Drop(actor, waybill.ID, "填错了"); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	got, err := env.svc.Get(waybill.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != constants.WaybillStatusDropped || got.DropReason != "填错了" {
		t.Fatalf("dropped waybill = %d / %q", got.Status, got.DropReason)
	}

	// 作废后不可再作废
	if err := env.svc.Drop(actor, waybill.ID, "再来一次"); !errors.Is(err, ErrWaybillStatusInvalid) {
		t.Fatalf("double drop err = %v, want ErrWaybillStatusInvalid", err)
	}
}

func TestWaybillReturn(t *testing.T) {
	env := setupWaybillServiceTest(t)

	original, err := env.svc.Create(env.actor(), env.input())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	receiver := Actor{UserID: 5, DepartmentID: env.hangzhou.ID}

	if _, err := env.svc.Return(receiver, original.ID, "货主拒收"); !errors.Is(err, ErrWaybillStatusInvalid) {
		t.Fatalf("return before arrival err = %v, want ErrWaybillStatusInvalid", err)
	}
	if err := env.db.Model(&models.Waybill{}).Where("id = ?", original.ID).
		Update("status", constants.WaybillStatusArrived).Error; err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if _, err := env.svc.Return(receiver, original.ID, ""); !errors.Is(err, ErrWaybillInvalidField) {
		t.Fatalf("empty reason err = %v, want ErrWaybillInvalidField", err)
	}
	sender := Actor{UserID: 5, DepartmentID: env.shanghai.ID}
	if _, err := env.svc.Return(sender, original.ID, "货主拒收"); !errors.Is(err, ErrWaybillDeptScope) {
		t.Fatalf("wrong dept err = %v, want ErrWaybillDeptScope", err)
	}

	// 退货前改动发货客户档案，验证退货运单沿用开单时的快照
	if err := env.db.Model(&models.Customer{}).Where("id = ?", env.sender.ID).
		Updates(map[string]interface{}{
			"credential_num": "310101200512310000",
			"address":        "上海市浦东新区新地址88号",
		}).Error; err != nil {
		t.Fatalf("update customer failed: %v", err)
	}

	returned, err := env.svc.Return(receiver, original.ID, "货主拒收")
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}

	// 线路与客户对调，提付运费翻倍，代收货款清零
	if returned.SrcDepartmentID != env.hangzhou.ID || returned.DstDepartmentID != env.shanghai.ID {
		t.Fatalf("return route = %d -> %d", returned.SrcDepartmentID, returned.DstDepartmentID)
	}
	if returned.SrcCustomerName != "刘芳" || returned.DstCustomerName != "陈建国" {
		t.Fatalf("return customers = %q / %q", returned.SrcCustomerName, returned.DstCustomerName)
	}
	if !returned.Fee.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("return fee = %s, want 240", returned.Fee)
	}
	if returned.FeeType != constants.FeeTypeSignFor {
		t.Fatalf("return fee type = %d, want sign-for", returned.FeeType)
	}
	if !returned.CargoPrice.IsZero() || returned.CargoPriceStatus != constants.CargoPriceStatusNone {
		t.Fatalf("return cargo price = %s / %d", returned.CargoPrice, returned.CargoPriceStatus)
	}
	if returned.ReturnWaybillID == nil || *returned.ReturnWaybillID != original.ID {
		t.Fatalf("return link = %v", returned.ReturnWaybillID)
	}
	// 证件号与地址沿用开单时的快照，客户档案后续改动不影响
	if returned.DstCustomerCredentialNum != original.SrcCustomerCredentialNum {
		t.Fatalf("credential snapshot = %q, want %q", returned.DstCustomerCredentialNum, original.SrcCustomerCredentialNum)
	}
	if returned.DstCustomerAddress != original.SrcCustomerAddress {
		t.Fatalf("address snapshot = %q, want %q", returned.DstCustomerAddress, original.SrcCustomerAddress)
	}
	if returned.SrcCustomerCredentialNum != original.DstCustomerCredentialNum {
		t.Fatalf("src credential snapshot = %q", returned.SrcCustomerCredentialNum)
	}

	got, err := env.svc.Get(original.ID)
	if err != nil {
		t.Fatalf("get original failed: %v", err)
	}
	if got.Status != constants.WaybillStatusReturned {
		t.Fatalf("original status = %d, want returned", got.Status)
	}
	routings, err := env.svc.Routings(original.ID)
	if err != nil {
		t.Fatalf("routings failed: %v", err)
	}
	last := routings[len(routings)-1]
	if last.Metadata["return_reason"] != "货主拒收" {
		t.Fatalf("return routing metadata = %+v", last.Metadata)
	}

	// 退货运单不可再退
	if err := env.db.Model(&models.Waybill{}).Where("id = ?", returned.ID).
		Update("status", constants.WaybillStatusArrived).Error; err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if _, err := env.svc.Return(env.actor(), returned.ID, "再退一次"); !errors.Is(err, ErrWaybillIsReturn) {
		t.Fatalf("double return err = %v, want ErrWaybillIsReturn", err)
	}
}

func TestWaybillReturnKeepsNowFee(t *testing.T) {
	env := setupWaybillServiceTest(t)

	input := env.input()
	input.FeeType = constants.FeeTypeNow
	original, err := env.svc.Create(env.actor(), input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := env.db.Model(&models.Waybill{}).Where("id = ?", original.ID).
		Update("status", constants.WaybillStatusArrived).Error; err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	returned, err := env.svc.Return(Actor{UserID: 5, DepartmentID: env.hangzhou.ID}, original.ID, "收货人联系不上")
	if err != nil {
		t.Fatalf("return failed: %v", err)
	}
	// 现付运单的退货运费不翻倍
	if !returned.Fee.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("return fee = %s, want 120", returned.Fee)
	}
}

func TestWaybillStandardFee(t *testing.T) {
	env := setupWaybillServiceTest(t)

	fee, err := env.svc.StandardFee(env.shanghai.ID, env.hangzhou.ID, decimal.NewFromInt(2), decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("standard fee failed: %v", err)
	}
	// (12 + 10) × 2 × 3 = 132
	if !fee.Equal(decimal.NewFromInt(132)) {
		t.Fatalf("standard fee = %s, want 132", fee)
	}

	if _, err := env.svc.StandardFee(env.shanghai.ID, 9999, decimal.NewFromInt(1), decimal.NewFromInt(1)); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("missing dept err = %v, want ErrDepartmentNotFound", err)
	}
}
