package service

import (
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// UserService 用户管理服务
type UserService struct {
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
	permissionRepo repository.PermissionRepository
	authSvc        *AuthService
}

// NewUserService 创建用户服务
func NewUserService(
	userRepo repository.UserRepository,
	departmentRepo repository.DepartmentRepository,
	permissionRepo repository.PermissionRepository,
	authSvc *AuthService,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		permissionRepo: permissionRepo,
		authSvc:        authSvc,
	}
}

// UserInput 用户创建/编辑入参
type UserInput struct {
	Name            string   `json:"name"`
	Password        string   `json:"password,omitempty"` // 编辑时留空表示不改密码
	Enabled         bool     `json:"enabled"`
	IsAdministrator bool     `json:"is_administrator"`
	DepartmentID    uint     `json:"department_id"`
	Permissions     []string `json:"permissions"`
}

func (s *UserService) checkName(name string, excludeID uint) error {
	if name == "" {
		return ErrUserNameEmpty
	}
	existing, err := s.userRepo.GetByName(name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return ErrUserNameTaken
	}
	return nil
}

// resolvePermissions 权限名换取权限记录，未知权限名直接丢弃
func (s *UserService) resolvePermissions(names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return s.permissionRepo.ListByNames(names)
}

// Create 创建用户
func (s *UserService) Create(input UserInput) (*models.User, error) {
	if err := s.checkName(input.Name, 0); err != nil {
		return nil, err
	}
	dept, err := s.departmentRepo.GetByID(input.DepartmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}
	if err := s.authSvc.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:            input.Name,
		PasswordHash:    hash,
		Enabled:         input.Enabled,
		IsAdministrator: input.IsAdministrator,
		DepartmentID:    input.DepartmentID,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	perms, err := s.resolvePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}
	if len(perms) > 0 {
		if err := s.userRepo.ReplacePermissions(user, perms); err != nil {
			return nil, err
		}
	}
	logger.Infow("user_created", "user_id", user.ID, "name", user.Name)
	return user, nil
}

// Update 编辑用户，系统必须保留至少一名启用状态的管理员
func (s *UserService) Update(id uint, input UserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.checkName(input.Name, id); err != nil {
		return nil, err
	}
	dept, err := s.departmentRepo.GetByID(input.DepartmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}

	// 撤销管理员或禁用前确认不是最后一名启用管理员
	losingAdmin := user.IsAdministrator && user.Enabled &&
		(!input.IsAdministrator || !input.Enabled)
	if losingAdmin {
		remaining, err := s.userRepo.CountEnabledAdministrators(user.ID)
		if err != nil {
			return nil, err
		}
		if remaining == 0 {
			return nil, ErrLastAdministrator
		}
	}

	user.Name = input.Name
	user.Enabled = input.Enabled
	user.IsAdministrator = input.IsAdministrator
	user.DepartmentID = input.DepartmentID
	if input.Password != "" {
		if err := s.authSvc.ValidatePassword(input.Password); err != nil {
			return nil, err
		}
		hash, err := s.authSvc.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	perms, err := s.resolvePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.ReplacePermissions(user, perms); err != nil {
		return nil, err
	}
	s.authSvc.InvalidateAuthState(user.ID)
	return user, nil
}

// Get 获取用户详情（含部门与权限）
func (s *UserService) Get(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List 分页查询用户
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// ListPermissions 全部可分配权限
func (s *UserService) ListPermissions() ([]models.Permission, error) {
	return s.permissionRepo.ListAll()
}
