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

func setupCustomerServiceTest(t *testing.T) *CustomerService {
	t.Helper()
	dsn := fmt.Sprintf("file:customer_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCustomerService(repository.NewCustomerRepository(db))
}

func TestCustomerCreate(t *testing.T) {
	svc := setupCustomerServiceTest(t)

	customer, err := svc.Create(CustomerInput{
		Name:    "陈建国",
		Phone:   "13800000001",
		Enabled: true,
		IsVIP:   true,
		Address: "上海市静安区某路1号",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if customer.Score != 0 {
		t.Fatalf("initial score = %d, want 0", customer.Score)
	}

	got, err := svc.GetByPhone("13800000001")
	if err != nil {
		t.Fatalf("get by phone failed: %v", err)
	}
	if got.ID != customer.ID {
		t.Fatalf("get by phone id = %d, want %d", got.ID, customer.ID)
	}
}

func TestCustomerPhoneUnique(t *testing.T) {
	svc := setupCustomerServiceTest(t)

	if _, err := svc.Create(CustomerInput{Name: "陈建国", Phone: "13800000001", Enabled: true}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(CustomerInput{Name: "刘芳", Phone: "13800000001", Enabled: true}); !errors.Is(err, ErrCustomerPhoneTaken) {
		t.Fatalf("duplicate phone err = %v, want ErrCustomerPhoneTaken", err)
	}
	if _, err := svc.Create(CustomerInput{Name: "", Phone: "13800000002"}); !errors.Is(err, ErrCustomerInvalidField) {
		t.Fatalf("empty name err = %v, want ErrCustomerInvalidField", err)
	}

	second, err := svc.Create(CustomerInput{Name: "刘芳", Phone: "13800000002", Enabled: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// 改号撞库同样拒绝
	if _, err := svc.Update(second.ID, CustomerInput{Name: "刘芳", Phone: "13800000001", Enabled: true}); !errors.Is(err, ErrCustomerPhoneTaken) {
		t.Fatalf("update phone err = %v, want ErrCustomerPhoneTaken", err)
	}
}

func TestCustomerUpdateKeepsScore(t *testing.T) {
	svc := setupCustomerServiceTest(t)

	customer, err := svc.Create(CustomerInput{Name: "陈建国", Phone: "13800000001", Enabled: true, IsVIP: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := models.DB.Model(&models.Customer{}).Where("id = ?", customer.ID).Update("score", 80).Error; err != nil {
		t.Fatalf("set score failed: %v", err)
	}

	updated, err := svc.Update(customer.ID, CustomerInput{Name: "陈建国", Phone: "13800000001", Enabled: false, IsVIP: true})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	// 编辑客户档案不动积分余额
	if updated.Score != 80 {
		t.Fatalf("score = %d, want 80", updated.Score)
	}
	if updated.Enabled {
		t.Fatal("enabled flag not updated")
	}
}
