package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wuliu-next/internal/constants"
)

// Department 部门表（分支机构 / 货场 / 总公司）
type Department struct {
	ID               uint            `gorm:"primarykey" json:"id"`                                    // 主键
	Name             string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`      // 部门名称
	ParentID         *uint           `gorm:"index" json:"parent_id,omitempty"`                        // 上级部门ID
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_price"` // 运费单价，>0 即为分支机构
	EnableSrc        bool            `gorm:"not null;default:false" json:"enable_src"`                // 允许发货
	EnableDst        bool            `gorm:"not null;default:false" json:"enable_dst"`                // 允许收货
	EnableCargoPrice bool            `gorm:"not null;default:false" json:"enable_cargo_price"`        // 允许代收货款
	IsBranchGroup    bool            `gorm:"not null;default:false" json:"is_branch_group"`           // 是否为分支机构分组
	CreatedAt        time.Time       `json:"created_at"`                                              // 创建时间
	UpdatedAt        time.Time       `json:"updated_at"`                                              // 更新时间

	Parent *Department `gorm:"foreignKey:ParentID" json:"parent,omitempty"` // 上级部门
}

// TableName 指定表名
func (Department) TableName() string {
	return "departments"
}

// IsBranch 是否为分支机构（单价大于 0 即是）
func (d *Department) IsBranch() bool {
	return d != nil && d.UnitPrice.IsPositive()
}

// IsGoodsYard 是否为货场（由保留名称判定）
func (d *Department) IsGoodsYard() bool {
	return d != nil && d.Name == constants.GoodsYardName
}
