package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/wuliu-next/internal/cache"
	"github.com/wuliu-next/internal/config"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

const permissionCacheTTL = time.Minute

// AuthService 认证与鉴权服务
type AuthService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	permCache *cache.ExpireCache
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		userRepo:  userRepo,
		permCache: cache.NewExpireCache(permissionCacheTTL),
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	minLength := 6
	if s != nil && s.cfg != nil && s.cfg.Security.PasswordMinLength > 0 {
		minLength = s.cfg.Security.PasswordMinLength
	}
	if len(password) < minLength {
		return fmt.Errorf("%w：至少 %d 位", ErrPasswordTooShort, minLength)
	}
	return nil
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpireHours) * time.Hour)

	claims := JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的 token")
}

// Login 用户登录
func (s *AuthService) Login(name, password string) (*models.User, string, time.Time, error) {
	user, err := s.userRepo.GetByName(name)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, token, expiresAt, nil
}

// ChangePassword 修改当前用户密码
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.VerifyPassword(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	s.InvalidateAuthState(userID)
	return nil
}

// PermissionNames 获取用户权限名集合（进程内缓存 1 分钟）
func (s *AuthService) PermissionNames(userID uint) (map[string]bool, error) {
	key := fmt.Sprintf("perms:%d", userID)
	if v, ok := s.permCache.Get(key); ok {
		if perms, ok := v.(map[string]bool); ok {
			return perms, nil
		}
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	perms := user.PermissionNames()
	s.permCache.Set(key, perms)
	return perms, nil
}

// HasPermission 判断用户是否持有某权限，管理员恒为真
func (s *AuthService) HasPermission(user *models.User, permission string) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdministrator {
		return true, nil
	}
	perms, err := s.PermissionNames(user.ID)
	if err != nil {
		return false, err
	}
	return perms[permission], nil
}

// InvalidateAuthState 权限或状态变更后清除用户的鉴权缓存
func (s *AuthService) InvalidateAuthState(userID uint) {
	s.permCache.Delete(fmt.Sprintf("perms:%d", userID))
	_ = cache.DelUserAuthState(context.Background(), userID)
}
