package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

func setupCustomerScoreServiceTest(t *testing.T) (*CustomerScoreService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:customer_score_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.CustomerScoreLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	svc := NewCustomerScoreService(
		repository.NewCustomerRepository(db),
		repository.NewCustomerScoreLogRepository(db),
	)
	return svc, db
}

func seedScoreCustomer(t *testing.T, db *gorm.DB, phone string, isVIP, enabled bool, score int) *models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:    "陈建国",
		Phone:   phone,
		Enabled: enabled,
		IsVIP:   isVIP,
		Score:   score,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return &customer
}

func TestCustomerScoreAdjust(t *testing.T) {
	svc, db := setupCustomerScoreServiceTest(t)
	customer := seedScoreCustomer(t, db, "13800000001", true, true, 100)
	actor := Actor{UserID: 7}

	got, err := svc.Adjust(actor, customer.ID, true, 50, "活动奖励")
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if got.Score != 150 {
		t.Fatalf("score = %d, want 150", got.Score)
	}

	got, err = svc.Adjust(actor, customer.ID, false, 30, "兑换运费")
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if got.Score != 120 {
		t.Fatalf("score = %d, want 120", got.Score)
	}

	// 每次调整落一条流水
	var logs []models.CustomerScoreLog
	if err := db.Where("customer_id = ?", customer.ID).Order("id").Find(&logs).Error; err != nil {
		t.Fatalf("load logs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("log rows = %d, want 2", len(logs))
	}
	if !logs[0].Increase || logs[0].Score != 50 || logs[0].OperationUserID != actor.UserID {
		t.Fatalf("first log = %+v", logs[0])
	}
	if logs[1].Increase || logs[1].Score != 30 {
		t.Fatalf("second log = %+v", logs[1])
	}
}

func TestCustomerScoreAdjustGuards(t *testing.T) {
	svc, db := setupCustomerScoreServiceTest(t)
	actor := Actor{UserID: 7}

	vip := seedScoreCustomer(t, db, "13800000001", true, true, 10)
	normal := seedScoreCustomer(t, db, "13800000002", false, true, 10)
	disabled := seedScoreCustomer(t, db, "13800000003", true, false, 10)

	if _, err := svc.Adjust(actor, vip.ID, true, 0, "无效"); !errors.Is(err, ErrScoreInvalid) {
		t.Fatalf("zero score err = %v, want ErrScoreInvalid", err)
	}
	if _, err := svc.Adjust(actor, vip.ID, true, 10, ""); !errors.Is(err, ErrScoreInvalid) {
		t.Fatalf("empty reason err = %v, want ErrScoreInvalid", err)
	}
	if _, err := svc.Adjust(actor, vip.ID, false, 11, "透支"); !errors.Is(err, ErrScoreInsufficient) {
		t.Fatalf("overdraw err = %v, want ErrScoreInsufficient", err)
	}
	if _, err := svc.Adjust(actor, normal.ID, true, 10, "普通客户"); !errors.Is(err, ErrCustomerNotVIP) {
		t.Fatalf("non-vip err = %v, want ErrCustomerNotVIP", err)
	}
	if _, err := svc.Adjust(actor, disabled.ID, true, 10, "停用客户"); !errors.Is(err, ErrCustomerDisabled) {
		t.Fatalf("disabled err = %v, want ErrCustomerDisabled", err)
	}
	if _, err := svc.Adjust(actor, 9999, true, 10, "不存在"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("missing err = %v, want ErrCustomerNotFound", err)
	}

	// 失败的调整不得留下流水
	var count int64
	if err := db.Model(&models.CustomerScoreLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count logs failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("log rows = %d, want 0", count)
	}
}
