package models

import (
	"fmt"
	"time"
)

// DepartmentPayment 部门结算单（部门间按日结算运费与代收货款）
// 成员运单由结算规则派生，不允许人工增删
type DepartmentPayment struct {
	ID          uint       `gorm:"primarykey" json:"id"`                    // 主键
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                              // 更新时间
	PaymentDate time.Time  `gorm:"index;not null" json:"payment_date"`      // 结算日期（自然日）
	SettleTime  *time.Time `json:"settle_time"`                             // 核对完成时间
	SrcDepartmentID uint   `gorm:"index;not null" json:"src_department_id"` // 付款部门ID
	DstDepartmentID uint   `gorm:"index;not null" json:"dst_department_id"` // 收款部门ID
	Status      int        `gorm:"index;not null;default:0" json:"status"`  // 状态
	SrcRemark   string     `gorm:"type:varchar(500)" json:"src_remark"`     // 付款方备注
	DstRemark   string     `gorm:"type:varchar(500)" json:"dst_remark"`     // 收款方备注

	SrcDepartment *Department `gorm:"foreignKey:SrcDepartmentID" json:"src_department,omitempty"`      // 付款部门
	DstDepartment *Department `gorm:"foreignKey:DstDepartmentID" json:"dst_department,omitempty"`      // 收款部门
	Waybills      []Waybill   `gorm:"many2many:department_payment_waybills" json:"waybills,omitempty"` // 成员运单
}

// TableName 指定表名
func (DepartmentPayment) TableName() string {
	return "department_payments"
}

// FullID 结算单显示编号：结算日期 + 付款部门ID后3位 + 收款部门ID后3位
func (p *DepartmentPayment) FullID() string {
	return fmt.Sprintf("%s%03d%03d", p.PaymentDate.Format("20060102"), p.SrcDepartmentID%1000, p.DstDepartmentID%1000)
}
