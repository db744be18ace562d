package service

import (
	"github.com/shopspring/decimal"

	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// DepartmentService 部门档案服务
// 结构约束：分支机构（单价 > 0）必须挂在分组下，分组与其余部门单价必须为 0
type DepartmentService struct {
	departmentRepo repository.DepartmentRepository
	userRepo       repository.UserRepository
}

// NewDepartmentService 创建部门服务
func NewDepartmentService(
	departmentRepo repository.DepartmentRepository,
	userRepo repository.UserRepository,
) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		userRepo:       userRepo,
	}
}

// DepartmentInput 部门创建/编辑入参
type DepartmentInput struct {
	Name             string          `json:"name"`
	ParentID         *uint           `json:"parent_id,omitempty"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	EnableSrc        bool            `json:"enable_src"`
	EnableDst        bool            `json:"enable_dst"`
	EnableCargoPrice bool            `json:"enable_cargo_price"`
	IsBranchGroup    bool            `json:"is_branch_group"`
}

// validate 校验名称唯一与结构约束
func (s *DepartmentService) validate(input DepartmentInput, excludeID uint) error {
	if input.Name == "" {
		return ErrDepartmentNameEmpty
	}
	existing, err := s.departmentRepo.GetByName(input.Name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return ErrDepartmentNameTaken
	}
	if input.UnitPrice.IsNegative() {
		return ErrDepartmentInvalidParent
	}

	var parent *models.Department
	if input.ParentID != nil {
		parent, err = s.departmentRepo.GetByID(*input.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return ErrDepartmentNotFound
		}
		if *input.ParentID == excludeID {
			return ErrDepartmentInvalidParent
		}
	}
	if parent != nil && parent.IsBranchGroup {
		if !input.UnitPrice.IsPositive() || input.IsBranchGroup {
			return ErrDepartmentInvalidParent
		}
	} else if input.UnitPrice.IsPositive() {
		return ErrDepartmentInvalidParent
	}
	return nil
}

// Create 创建部门
func (s *DepartmentService) Create(input DepartmentInput) (*models.Department, error) {
	if err := s.validate(input, 0); err != nil {
		return nil, err
	}
	dept := &models.Department{
		Name:             input.Name,
		ParentID:         input.ParentID,
		UnitPrice:        input.UnitPrice,
		EnableSrc:        input.EnableSrc,
		EnableDst:        input.EnableDst,
		EnableCargoPrice: input.EnableCargoPrice,
		IsBranchGroup:    input.IsBranchGroup,
	}
	if err := s.departmentRepo.Create(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Update 编辑部门
func (s *DepartmentService) Update(id uint, input DepartmentInput) (*models.Department, error) {
	dept, err := s.departmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}
	if err := s.validate(input, id); err != nil {
		return nil, err
	}
	dept.Name = input.Name
	dept.ParentID = input.ParentID
	dept.UnitPrice = input.UnitPrice
	dept.EnableSrc = input.EnableSrc
	dept.EnableDst = input.EnableDst
	dept.EnableCargoPrice = input.EnableCargoPrice
	dept.IsBranchGroup = input.IsBranchGroup
	if err := s.departmentRepo.Update(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete 删除部门，存在用户或下级部门时拒绝
func (s *DepartmentService) Delete(id uint) error {
	dept, err := s.departmentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if dept == nil {
		return ErrDepartmentNotFound
	}
	children, err := s.departmentRepo.CountChildren(id)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrDepartmentInUse
	}
	users, err := s.userRepo.CountByDepartment(id)
	if err != nil {
		return err
	}
	if users > 0 {
		return ErrDepartmentInUse
	}
	return s.departmentRepo.Delete(id)
}

// Get 获取部门详情
func (s *DepartmentService) Get(id uint) (*models.Department, error) {
	dept, err := s.departmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}
	return dept, nil
}

// List 分页查询部门
func (s *DepartmentService) List(filter repository.DepartmentListFilter) ([]models.Department, int64, error) {
	return s.departmentRepo.List(filter)
}

// ListAll 全量部门列表，录单与车次表单下拉使用
func (s *DepartmentService) ListAll() ([]models.Department, error) {
	return s.departmentRepo.ListAll()
}
