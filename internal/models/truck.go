package models

import "time"

// Truck 车辆表
type Truck struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                      // 主键
	PlateNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"plate_number"` // 车牌号
	DriverName  string    `gorm:"type:varchar(50);not null" json:"driver_name"`              // 司机姓名
	DriverPhone string    `gorm:"type:varchar(20);not null" json:"driver_phone"`             // 司机电话
	Enabled     bool      `gorm:"not null;default:true" json:"enabled"`                      // 是否启用
	CreatedAt   time.Time `json:"created_at"`                                                // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                // 更新时间
}

// TableName 指定表名
func (Truck) TableName() string {
	return "trucks"
}
