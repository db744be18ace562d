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

type transportOutTestEnv struct {
	svc       *TransportOutService
	db        *gorm.DB
	shanghai  *models.Department
	hangzhou  *models.Department
	goodsYard *models.Department
	truck     *models.Truck
}

func setupTransportOutServiceTest(t *testing.T) *transportOutTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:transport_out_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Department{},
		&models.Truck{},
		&models.Waybill{},
		&models.WaybillRouting{},
		&models.TransportOut{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	env := &transportOutTestEnv{db: db}
	env.shanghai = seedWaybillDept(t, db, "上海营业部", "12", true, true, true)
	env.hangzhou = seedWaybillDept(t, db, "杭州营业部", "10", true, true, true)
	env.goodsYard = seedWaybillDept(t, db, constants.GoodsYardName, "0", true, true, false)

	env.truck = &models.Truck{PlateNumber: "沪A12345", DriverName: "张伟", DriverPhone: "13900000001", Enabled: true}
	if err := db.Create(env.truck).Error; err != nil {
		t.Fatalf("create truck failed: %v", err)
	}

	env.svc = NewTransportOutService(
		repository.NewTransportOutRepository(db),
		repository.NewWaybillRepository(db),
		repository.NewWaybillRoutingRepository(db),
		repository.NewDepartmentRepository(db),
		repository.NewTruckRepository(db),
	)
	return env
}

// seedTransportWaybill 直接落一张上海发杭州的运单
func (env *transportOutTestEnv) seedTransportWaybill(t *testing.T, status int) *models.Waybill {
	t.Helper()
	waybill := models.Waybill{
		SrcDepartmentID: env.shanghai.ID,
		DstDepartmentID: env.hangzhou.ID,
		CargoName:       "建材",
		CargoNum:        1,
		CargoVolume:     decimal.NewFromInt(1),
		CargoWeight:     decimal.NewFromInt(1),
		Fee:             models.NewMoneyFromInt(100),
		Status:          status,
	}
	if err := env.db.Create(&waybill).Error; err != nil {
		t.Fatalf("create waybill failed: %v", err)
	}
	return &waybill
}

func (env *transportOutTestEnv) actor() Actor {
	return Actor{UserID: 1, DepartmentID: env.shanghai.ID}
}

func (env *transportOutTestEnv) waybillStatus(t *testing.T, id uint) int {
	t.Helper()
	var waybill models.Waybill
	if err := env.db.First(&waybill, id).Error; err != nil {
		t.Fatalf("load waybill failed: %v", err)
	}
	return waybill.Status
}

func TestTransportOutCreate(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w1 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	w2 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)

	transportOut, err := env.svc.Create(env.actor(), TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w1.ID, w2.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if transportOut.Status != constants.TransportOutStatusReady {
		t.Fatalf("status = %d, want ready", transportOut.Status)
	}
	// 司机信息落快照
	if transportOut.DriverName != "张伟" || transportOut.DriverPhone != "13900000001" {
		t.Fatalf("driver snapshot = %q / %q", transportOut.DriverName, transportOut.DriverPhone)
	}
	// 成员运单装车
	if got := env.waybillStatus(t, w1.ID); got != constants.WaybillStatusLoaded {
		t.Fatalf("member status = %d, want loaded", got)
	}

	var routings []models.WaybillRouting
	if err := env.db.Where("waybill_id = ?", w1.ID).Find(&routings).Error; err != nil {
		t.Fatalf("load routings failed: %v", err)
	}
	if len(routings) != 1 || routings[0].OperationType != constants.WaybillStatusLoaded {
		t.Fatalf("routings = %+v", routings)
	}
}

func TestTransportOutCreateValidation(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	actor := env.actor()

	if _, err := env.svc.Create(actor, TransportOutInput{TruckID: env.truck.ID, DstDepartmentID: env.goodsYard.ID}); !errors.Is(err, ErrTransportOutEmpty) {
		t.Fatalf("empty err = %v, want ErrTransportOutEmpty", err)
	}

	// 分支机构只能发往货场
	if _, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.hangzhou.ID,
		WaybillIDs:      []uint{w.ID},
	}); !errors.Is(err, ErrTransportOutRouteInvalid) {
		t.Fatalf("branch-to-branch err = %v, want ErrTransportOutRouteInvalid", err)
	}
	if _, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.shanghai.ID,
		WaybillIDs:      []uint{w.ID},
	}); !errors.Is(err, ErrTransportOutRouteInvalid) {
		t.Fatalf("same route err = %v, want ErrTransportOutRouteInvalid", err)
	}

	// 停用车辆不可派车
	disabledTruck := models.Truck{PlateNumber: "沪B00001", DriverName: "王强", DriverPhone: "13900000002", Enabled: false}
	if err := env.db.Create(&disabledTruck).Error; err != nil {
		t.Fatalf("create truck failed: %v", err)
	}
	if _, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         disabledTruck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w.ID},
	}); !errors.Is(err, ErrTruckDisabled) {
		t.Fatalf("disabled truck err = %v, want ErrTruckDisabled", err)
	}

	// 他部门的运单不能装进本部门车次
	other := models.Waybill{
		SrcDepartmentID: env.hangzhou.ID,
		DstDepartmentID: env.shanghai.ID,
		CargoName:       "五金",
		CargoNum:        1,
		CargoVolume:     decimal.NewFromInt(1),
		CargoWeight:     decimal.NewFromInt(1),
		Fee:             models.NewMoneyFromInt(50),
		Status:          constants.WaybillStatusCreated,
	}
	if err := env.db.Create(&other).Error; err != nil {
		t.Fatalf("create waybill failed: %v", err)
	}
	if _, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{other.ID},
	}); !errors.Is(err, ErrTransportOutWaybillStatus) {
		t.Fatalf("foreign waybill err = %v, want ErrTransportOutWaybillStatus", err)
	}
}

func TestTransportOutOccupiedWaybill(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	actor := env.actor()

	if _, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w.ID},
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 已装车的运单不能再次装车
	if _, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w.ID},
	}); !errors.Is(err, ErrTransportOutWaybillOccupied) {
		t.Fatalf("occupied err = %v, want ErrTransportOutWaybillOccupied", err)
	}
}

func TestTransportOutStartAndArrive(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	actor := env.actor()

	transportOut, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 发车部门以外无权发车
	outsider := Actor{UserID: 2, DepartmentID: env.hangzhou.ID}
	if err := env.svc.Start(outsider, transportOut.ID); !errors.Is(err, ErrTransportOutDeptScope) {
		t.Fatalf("scope err = %v, want ErrTransportOutDeptScope", err)
	}

	if err := env.svc.Start(actor, transportOut.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if got := env.waybillStatus(t, w.ID); got != constants.WaybillStatusDeparted {
		t.Fatalf("member status = %d, want departed", got)
	}
	got, err := env.svc.Get(transportOut.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != constants.TransportOutStatusOnTheWay || got.StartTime == nil {
		t.Fatalf("transport out = %d / %v", got.Status, got.StartTime)
	}

	// 发车后不可再次发车
	if err := env.svc.Start(actor, transportOut.ID); !errors.Is(err, ErrTransportOutStatusInvalid) {
		t.Fatalf("double start err = %v, want ErrTransportOutStatusInvalid", err)
	}

	// 到达确认由目的部门操作
	if err := env.svc.ConfirmArrival(actor, transportOut.ID); !errors.Is(err, ErrTransportOutDeptScope) {
		t.Fatalf("arrival scope err = %v, want ErrTransportOutDeptScope", err)
	}
	yardActor := Actor{UserID: 3, DepartmentID: env.goodsYard.ID}
	if err := env.svc.ConfirmArrival(yardActor, transportOut.ID); err != nil {
		t.Fatalf("confirm arrival failed: %v", err)
	}

	// 到货场不算终到，不落到达时间
	if got := env.waybillStatus(t, w.ID); got != constants.WaybillStatusGoodsYardArrived {
		t.Fatalf("member status = %d, want goods yard arrived", got)
	}
	var member models.Waybill
	if err := env.db.First(&member, w.ID).Error; err != nil {
		t.Fatalf("load waybill failed: %v", err)
	}
	if member.ArrivalTime != nil {
		t.Fatalf("arrival time = %v, want nil at goods yard", member.ArrivalTime)
	}
}

func TestTransportOutGoodsYardLeg(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w := env.seedTransportWaybill(t, constants.WaybillStatusGoodsYardArrived)
	yardActor := Actor{UserID: 3, DepartmentID: env.goodsYard.ID}

	// 货场按运单的收货部门分拨
	transportOut, err := env.svc.Create(yardActor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.hangzhou.ID,
		WaybillIDs:      []uint{w.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := env.waybillStatus(t, w.ID); got != constants.WaybillStatusGoodsYardLoaded {
		t.Fatalf("member status = %d, want goods yard loaded", got)
	}

	if err := env.svc.Start(yardActor, transportOut.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if got := env.waybillStatus(t, w.ID); got != constants.WaybillStatusGoodsYardDeparted {
		t.Fatalf("member status = %d, want goods yard departed", got)
	}

	receiver := Actor{UserID: 4, DepartmentID: env.hangzhou.ID}
	if err := env.svc.ConfirmArrival(receiver, transportOut.ID); err != nil {
		t.Fatalf("confirm arrival failed: %v", err)
	}

	var member models.Waybill
	if err := env.db.First(&member, w.ID).Error; err != nil {
		t.Fatalf("load waybill failed: %v", err)
	}
	if member.Status != constants.WaybillStatusArrived {
		t.Fatalf("member status = %d, want arrived", member.Status)
	}
	// 终到分支机构时落到达时间
	if member.ArrivalTime == nil {
		t.Fatal("arrival time not recorded")
	}
}

func TestTransportOutGoodsYardWrongDst(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w := env.seedTransportWaybill(t, constants.WaybillStatusGoodsYardArrived)
	yardActor := Actor{UserID: 3, DepartmentID: env.goodsYard.ID}

	// 运单收货部门是杭州，不能装进发往上海的车次
	if _, err := env.svc.Create(yardActor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.shanghai.ID,
		WaybillIDs:      []uint{w.ID},
	}); !errors.Is(err, ErrTransportOutWaybillStatus) {
		t.Fatalf("wrong dst err = %v, want ErrTransportOutWaybillStatus", err)
	}
}

func TestTransportOutDelete(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	actor := env.actor()

	transportOut, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := env.svc.Delete(actor, transportOut.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	// 成员运单回退到装车前状态
	if got := env.waybillStatus(t, w.ID); got != constants.WaybillStatusCreated {
		t.Fatalf("member status = %d, want created", got)
	}
	if _, err := env.svc.Get(transportOut.ID); !errors.Is(err, ErrTransportOutNotFound) {
		t.Fatalf("get deleted err = %v, want ErrTransportOutNotFound", err)
	}
}

func TestTransportOutUpdateMembers(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w1 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	w2 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	actor := env.actor()

	transportOut, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w1.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 换成员：w1 卸车回退，w2 装车
	if _, err := env.svc.Update(actor, transportOut.ID, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w2.ID},
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := env.waybillStatus(t, w1.ID); got != constants.WaybillStatusCreated {
		t.Fatalf("removed member status = %d, want created", got)
	}
	if got := env.waybillStatus(t, w2.ID); got != constants.WaybillStatusLoaded {
		t.Fatalf("added member status = %d, want loaded", got)
	}

	// 发车后不可编辑
	if err := env.svc.Start(actor, transportOut.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := env.svc.Update(actor, transportOut.ID, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w2.ID},
	}); !errors.Is(err, ErrTransportOutStatusInvalid) {
		t.Fatalf("update after start err = %v, want ErrTransportOutStatusInvalid", err)
	}
}

func TestTransportOutStartRoutingTrail(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w1 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	w2 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	w3 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	actor := env.actor()

	transportOut, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w1.ID, w2.ID, w3.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := env.svc.Start(actor, transportOut.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// 三张成员运单各落一条发车流转记录，元数据指向本车次
	var routings []models.WaybillRouting
	if err := env.db.Where("operation_type = ?", constants.WaybillStatusDeparted).
		Find(&routings).Error; err != nil {
		t.Fatalf("load routings failed: %v", err)
	}
	if len(routings) != 3 {
		t.Fatalf("departed routing rows = %d, want 3", len(routings))
	}
	seen := make(map[uint]bool, 3)
	for _, r := range routings {
		seen[r.WaybillID] = true
		// JSON 数值反序列化为 float64
		if got, ok := r.Metadata["transport_out_id"].(float64); !ok || uint(got) != transportOut.ID {
			t.Fatalf("routing metadata = %+v, want transport_out_id %d", r.Metadata, transportOut.ID)
		}
	}
	for _, id := range []uint{w1.ID, w2.ID, w3.ID} {
		if !seen[id] {
			t.Fatalf("waybill %d missing departed routing", id)
		}
	}
}

func TestTransportOutStartRollsBackOnFailure(t *testing.T) {
	env := setupTransportOutServiceTest(t)
	w1 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	w2 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	w3 := env.seedTransportWaybill(t, constants.WaybillStatusCreated)
	actor := env.actor()

	transportOut, err := env.svc.Create(actor, TransportOutInput{
		TruckID:         env.truck.ID,
		DstDepartmentID: env.goodsYard.ID,
		WaybillIDs:      []uint{w1.ID, w2.ID, w3.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 人为制造发车事务中途失败：状态批量更新成功后流转记录写入报错
	if err := env.db.Migrator().DropTable(&models.WaybillRouting{}); err != nil {
		t.Fatalf("drop table failed: %v", err)
	}
	if err := env.svc.Start(actor, transportOut.ID); err == nil {
		t.Fatal("start succeeded, want error")
	}

	// 事务回滚后所有成员运单状态保持装车态，车次未发车
	for _, id := range []uint{w1.ID, w2.ID, w3.ID} {
		if got := env.waybillStatus(t, id); got != constants.WaybillStatusLoaded {
			t.Fatalf("waybill %d status = %d, want loaded after rollback", id, got)
		}
	}
	reloaded, err := env.svc.Get(transportOut.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.Status != constants.TransportOutStatusReady || reloaded.StartTime != nil {
		t.Fatalf("transport out = %d / %v, want ready with no start time", reloaded.Status, reloaded.StartTime)
	}
}
