package models

import "time"

// WaybillRouting 运单流转记录表
// 仅追加的审计账：每次合法状态变更写入一行，永不更新或删除
type WaybillRouting struct {
	ID              uint      `gorm:"primarykey" json:"id"`                         // 主键
	WaybillID       uint      `gorm:"index;not null" json:"waybill_id"`             // 运单ID
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                      // 发生时间
	OperationType   int       `gorm:"index;not null" json:"operation_type"`         // 操作类型，取运单状态值
	OperationDeptID uint      `gorm:"index;not null" json:"operation_dept_id"`      // 操作部门ID
	OperationUserID uint      `gorm:"index;not null" json:"operation_user_id"`      // 操作人ID
	Metadata        JSON      `gorm:"type:json" json:"metadata,omitempty"`          // 结构化附加信息（车次ID、退货运单ID 等）

	Waybill       *Waybill    `gorm:"foreignKey:WaybillID" json:"waybill,omitempty"`               // 运单
	OperationDept *Department `gorm:"foreignKey:OperationDeptID" json:"operation_dept,omitempty"`  // 操作部门
	OperationUser *User       `gorm:"foreignKey:OperationUserID" json:"operation_user,omitempty"`  // 操作人
}

// TableName 指定表名
func (WaybillRouting) TableName() string {
	return "waybill_routings"
}
