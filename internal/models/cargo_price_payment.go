package models

import (
	"fmt"
	"time"
)

// CargoPricePayment 代收转款单（向收款人支付代收货款的审批单）
type CargoPricePayment struct {
	ID           uint       `gorm:"primarykey" json:"id"`                 // 主键
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`              // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                           // 更新时间
	SettleTime   *time.Time `json:"settle_time"`                          // 转款时间
	CreateUserID uint       `gorm:"index;not null" json:"create_user_id"` // 创建人ID（仅创建人可编辑/删除）

	PayeeName          string `gorm:"type:varchar(100);not null" json:"payee_name"`       // 收款人姓名
	PayeePhone         string `gorm:"type:varchar(20);not null" json:"payee_phone"`       // 收款人电话
	PayeeBankName      string `gorm:"type:varchar(100);not null" json:"payee_bank_name"`  // 收款人开户银行
	PayeeBankNumber    string `gorm:"type:varchar(50);not null" json:"payee_bank_number"` // 收款人银行账号
	PayeeCredentialNum string `gorm:"type:varchar(50)" json:"payee_credential_num"`       // 收款人证件号

	Remark       string `gorm:"type:varchar(500)" json:"remark"`        // 备注
	RejectReason string `gorm:"type:varchar(500)" json:"reject_reason"` // 驳回原因
	Status       int    `gorm:"index;not null;default:0" json:"status"` // 状态

	CreateUser *User     `gorm:"foreignKey:CreateUserID" json:"create_user,omitempty"`     // 创建人
	Waybills   []Waybill `gorm:"foreignKey:CargoPricePaymentID" json:"waybills,omitempty"` // 关联运单
}

// TableName 指定表名
func (CargoPricePayment) TableName() string {
	return "cargo_price_payments"
}

// FullID 转款单显示编号：创建日期 + 创建人ID后3位 + 单号后3位
func (p *CargoPricePayment) FullID() string {
	return fmt.Sprintf("%s%03d%03d", p.CreatedAt.Format("20060102"), p.CreateUserID%1000, p.ID%1000)
}
