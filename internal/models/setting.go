package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting 全局设置（单行表，禁止出现第二行）
// 比例字段不使用 Money：Money 四舍五入到 2 位小数，而比例需要 4 位精度
type Setting struct {
	ID                 uint            `gorm:"primarykey" json:"id"`                                   // 主键（恒为 1）
	CompanyName        string          `gorm:"type:varchar(100);not null" json:"company_name"`         // 公司名称
	HandlingFeeRatio   decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"handling_fee_ratio"`   // 代收手续费比例 (0,1]
	CustomerScoreRatio decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"customer_score_ratio"` // 客户积分比例 (0,1]
	UpdatedAt          time.Time       `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
