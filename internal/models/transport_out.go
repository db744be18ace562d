package models

import (
	"fmt"
	"time"

	"github.com/wuliu-next/internal/constants"
)

// TransportOut 车次（发车批次）表，将多张运单合并为一次整车运输
type TransportOut struct {
	ID              uint       `gorm:"primarykey" json:"id"`                          // 主键
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                    // 更新时间
	StartTime       *time.Time `json:"start_time"`                                    // 发车时间
	EndTime         *time.Time `json:"end_time"`                                      // 到达时间
	TruckID         uint       `gorm:"index;not null" json:"truck_id"`                // 车辆ID
	DriverName      string     `gorm:"type:varchar(50);not null" json:"driver_name"`  // 司机姓名快照
	DriverPhone     string     `gorm:"type:varchar(20);not null" json:"driver_phone"` // 司机电话快照
	SrcDepartmentID uint       `gorm:"index;not null" json:"src_department_id"`       // 始发部门ID
	DstDepartmentID uint       `gorm:"index;not null" json:"dst_department_id"`       // 目的部门ID
	Status          int        `gorm:"index;not null;default:0" json:"status"`        // 车次状态

	Truck         *Truck      `gorm:"foreignKey:TruckID" json:"truck,omitempty"`                  // 车辆
	SrcDepartment *Department `gorm:"foreignKey:SrcDepartmentID" json:"src_department,omitempty"` // 始发部门
	DstDepartment *Department `gorm:"foreignKey:DstDepartmentID" json:"dst_department,omitempty"` // 目的部门
	Waybills      []Waybill   `gorm:"many2many:transport_out_waybills" json:"waybills,omitempty"` // 装载的运单
}

// TableName 指定表名
func (TransportOut) TableName() string {
	return "transport_outs"
}

// FullID 车次显示编号
func (t *TransportOut) FullID() string {
	return fmt.Sprintf("SN%08d", t.ID)
}

// StatusName 状态显示名称
func (t *TransportOut) StatusName() string {
	return constants.TransportOutStatusNames[t.Status]
}
