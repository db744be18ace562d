package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/wuliu-next/internal/config"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Department{}, &models.Permission{}, &models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "auth-service-test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Security.PasswordMinLength = 6
	return NewAuthService(cfg, repository.NewUserRepository(db)), db
}

func seedAuthUser(t *testing.T, db *gorm.DB, svc *AuthService, name, password string, enabled bool) *models.User {
	t.Helper()
	dept := models.Department{Name: fmt.Sprintf("部门_%s", name)}
	if err := db.Create(&dept).Error; err != nil {
		t.Fatalf("create department failed: %v", err)
	}
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := models.User{
		Name:         name,
		PasswordHash: hash,
		Enabled:      enabled,
		DepartmentID: dept.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return &user
}

func TestAuthLogin(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedAuthUser(t, db, svc, "zhangsan", "secret12", true)

	user, token, expiresAt, err := svc.Login("zhangsan", "secret12")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("token is empty")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiresAt = %v, want future", expiresAt)
	}
	if user.LastLoginAt == nil {
		t.Fatal("last login time not recorded")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Name != "zhangsan" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedAuthUser(t, db, svc, "zhangsan", "secret12", true)

	if _, _, _, err := svc.Login("zhangsan", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, _, err := svc.Login("nobody", "secret12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthLoginDisabledUser(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	seedAuthUser(t, db, svc, "lisi", "secret12", false)

	if _, _, _, err := svc.Login("lisi", "secret12"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled user err = %v, want ErrUserDisabled", err)
	}
}

func TestAuthChangePassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := seedAuthUser(t, db, svc, "zhangsan", "secret12", true)

	if err := svc.ChangePassword(user.ID, "wrong", "newsecret"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password err = %v, want ErrInvalidPassword", err)
	}
	if err := svc.ChangePassword(user.ID, "secret12", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("short password err = %v, want ErrPasswordTooShort", err)
	}
	if err := svc.ChangePassword(user.ID, "secret12", "newsecret"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, _, err := svc.Login("zhangsan", "secret12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should fail: %v", err)
	}
	if _, _, _, err := svc.Login("zhangsan", "newsecret"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
