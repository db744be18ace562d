package models

import "time"

// CustomerScoreLog 客户积分流水表
// 仅追加：客户积分余额必须等于其全部流水的有符号和
type CustomerScoreLog struct {
	ID              uint      `gorm:"primarykey" json:"id"`                    // 主键
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                 // 发生时间
	CustomerID      uint      `gorm:"index;not null" json:"customer_id"`       // 客户ID
	Increase        bool      `gorm:"not null" json:"increase"`                // true 增加 / false 减少
	Score           int       `gorm:"not null" json:"score"`                   // 变动积分，>= 1
	Reason          string    `gorm:"type:varchar(500)" json:"reason"`         // 变动原因
	WaybillID       *uint     `gorm:"uniqueIndex" json:"waybill_id,omitempty"` // 关联运单ID，每张运单至多产生一条流水
	OperationUserID uint      `gorm:"index;not null" json:"operation_user_id"` // 操作人ID

	Customer      *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`            // 客户
	Waybill       *Waybill  `gorm:"foreignKey:WaybillID" json:"waybill,omitempty"`              // 关联运单
	OperationUser *User     `gorm:"foreignKey:OperationUserID" json:"operation_user,omitempty"` // 操作人
}

// TableName 指定表名
func (CustomerScoreLog) TableName() string {
	return "customer_score_logs"
}
