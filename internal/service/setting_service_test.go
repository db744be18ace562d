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

func setupSettingServiceTest(t *testing.T) (*SettingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:setting_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewSettingService(repository.NewSettingRepository(db)), db
}

func TestSettingEnsureDefaults(t *testing.T) {
	svc, db := setupSettingServiceTest(t)

	setting, err := svc.EnsureDefaults()
	if err != nil {
		t.Fatalf("ensure defaults failed: %v", err)
	}
	if setting.CompanyName != constants.DefaultCompanyName {
		t.Fatalf("company name = %q, want %q", setting.CompanyName, constants.DefaultCompanyName)
	}
	if !setting.HandlingFeeRatio.Equal(decimal.RequireFromString(constants.DefaultHandlingFeeRatio)) {
		t.Fatalf("handling fee ratio = %s", setting.HandlingFeeRatio)
	}

	// 再次调用不重复建行
	if _, err := svc.EnsureDefaults(); err != nil {
		t.Fatalf("ensure defaults twice failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.Setting{}).Count(&count).Error; err != nil {
		t.Fatalf("count settings failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("setting rows = %d, want 1", count)
	}
}

func TestSettingUpdate(t *testing.T) {
	svc, _ := setupSettingServiceTest(t)

	setting, err := svc.Update("中通物流", decimal.RequireFromString("0.005"), decimal.RequireFromString("0.5"))
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if setting.CompanyName != "中通物流" {
		t.Fatalf("company name = %q", setting.CompanyName)
	}
	if !setting.HandlingFeeRatio.Equal(decimal.RequireFromString("0.005")) {
		t.Fatalf("handling fee ratio = %s", setting.HandlingFeeRatio)
	}

	got, err := svc.Get()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.CompanyName != "中通物流" {
		t.Fatalf("get company name = %q", got.CompanyName)
	}
}

func TestSettingUpdateValidation(t *testing.T) {
	svc, db := setupSettingServiceTest(t)

	one := decimal.NewFromInt(1)
	if _, err := svc.Update("", one, one); !errors.Is(err, ErrSettingNameEmpty) {
		t.Fatalf("empty name err = %v, want ErrSettingNameEmpty", err)
	}
	if _, err := svc.Update("物流", decimal.Zero, one); !errors.Is(err, ErrSettingInvalidRatio) {
		t.Fatalf("zero ratio err = %v, want ErrSettingInvalidRatio", err)
	}
	if _, err := svc.Update("物流", one, decimal.RequireFromString("1.01")); !errors.Is(err, ErrSettingInvalidRatio) {
		t.Fatalf("ratio > 1 err = %v, want ErrSettingInvalidRatio", err)
	}

	// 比例 1 是合法上界
	if _, err := svc.Update("物流", one, one); err != nil {
		t.Fatalf("ratio = 1 should pass: %v", err)
	}

	// 设置表出现第二行时拒绝写入
	extra := models.Setting{
		CompanyName:        "野表行",
		HandlingFeeRatio:   one,
		CustomerScoreRatio: one,
	}
	if err := db.Create(&extra).Error; err != nil {
		t.Fatalf("create extra row failed: %v", err)
	}
	if _, err := svc.Update("物流", one, one); !errors.Is(err, ErrSettingDuplicate) {
		t.Fatalf("duplicate err = %v, want ErrSettingDuplicate", err)
	}
}
