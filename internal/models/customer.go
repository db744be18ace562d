package models

import "time"

// Customer 客户表
type Customer struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                // 主键
	Name          string    `gorm:"type:varchar(100);not null;index" json:"name"`        // 姓名
	Phone         string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`  // 手机号
	Enabled       bool      `gorm:"not null;default:true" json:"enabled"`                // 是否启用
	BankName      string    `gorm:"type:varchar(100)" json:"bank_name"`                  // 开户银行
	BankNumber    string    `gorm:"type:varchar(50)" json:"bank_number"`                 // 银行账号
	CredentialNum string    `gorm:"type:varchar(50)" json:"credential_num"`              // 证件号码
	Address       string    `gorm:"type:varchar(200)" json:"address"`                    // 地址
	IsVIP         bool      `gorm:"not null;default:false" json:"is_vip"`                // 是否为 VIP 客户
	Score         int       `gorm:"not null;default:0" json:"score"`                     // 积分余额（须等于积分流水的有符号和）
	CreatedAt     time.Time `json:"created_at"`                                          // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
