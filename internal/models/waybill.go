package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wuliu-next/internal/constants"
)

// Waybill 运单表，系统的核心实体
// 客户姓名/电话等字段为下单时的快照，客户资料变更或删除后仍保留
type Waybill struct {
	ID          uint       `gorm:"primarykey" json:"id"`             // 主键
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                       // 更新时间
	ArrivalTime *time.Time `gorm:"index" json:"arrival_time"`        // 到达时间
	SignForTime *time.Time `gorm:"index" json:"sign_for_time"`       // 签收时间

	SrcDepartmentID uint `gorm:"index;not null" json:"src_department_id"` // 发货部门ID
	DstDepartmentID uint `gorm:"index;not null" json:"dst_department_id"` // 收货部门ID

	SrcCustomerID            *uint  `gorm:"index" json:"src_customer_id,omitempty"`              // 发货客户ID
	DstCustomerID            *uint  `gorm:"index" json:"dst_customer_id,omitempty"`              // 收货客户ID
	SrcCustomerName          string `gorm:"type:varchar(100)" json:"src_customer_name"`          // 发货客户姓名快照
	SrcCustomerPhone         string `gorm:"type:varchar(20)" json:"src_customer_phone"`          // 发货客户电话快照
	SrcCustomerCredentialNum string `gorm:"type:varchar(50)" json:"src_customer_credential_num"` // 发货客户证件号快照
	SrcCustomerAddress       string `gorm:"type:varchar(200)" json:"src_customer_address"`       // 发货客户地址快照
	DstCustomerName          string `gorm:"type:varchar(100)" json:"dst_customer_name"`          // 收货客户姓名快照
	DstCustomerPhone         string `gorm:"type:varchar(20)" json:"dst_customer_phone"`          // 收货客户电话快照
	DstCustomerCredentialNum string `gorm:"type:varchar(50)" json:"dst_customer_credential_num"` // 收货客户证件号快照
	DstCustomerAddress       string `gorm:"type:varchar(200)" json:"dst_customer_address"`       // 收货客户地址快照

	CargoName        string          `gorm:"type:varchar(100);not null" json:"cargo_name"`                    // 货物名称
	CargoNum         int             `gorm:"not null;default:1" json:"cargo_num"`                             // 货物件数，>= 1
	CargoVolume      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cargo_volume"`                 // 体积（立方米），>= 0.01
	CargoWeight      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cargo_weight"`                 // 重量（吨），>= 0.1
	CargoPrice       Money           `gorm:"type:decimal(20,2);not null;default:0" json:"cargo_price"`        // 代收货款，>= 0
	CargoHandlingFee Money           `gorm:"type:decimal(20,2);not null;default:0" json:"cargo_handling_fee"` // 代收手续费，派生值，禁止人工录入
	Fee              Money           `gorm:"type:decimal(20,2);not null" json:"fee"`                          // 运费，>= 1
	FeeType          int             `gorm:"not null;default:0" json:"fee_type"`                              // 运费支付方式

	CustomerRemark string `gorm:"type:varchar(500)" json:"customer_remark"` // 客户备注
	CompanyRemark  string `gorm:"type:varchar(500)" json:"company_remark"`  // 公司备注

	SignForName          string `gorm:"type:varchar(100)" json:"sign_for_name"`           // 签收人姓名
	SignForCredentialNum string `gorm:"type:varchar(50)" json:"sign_for_credential_num"`  // 签收人证件号

	Status     int    `gorm:"index;not null;default:0" json:"status"` // 运单状态
	DropReason string `gorm:"type:varchar(500)" json:"drop_reason"`   // 作废原因（仅作废时填写）

	ReturnWaybillID     *uint `gorm:"uniqueIndex" json:"return_waybill_id,omitempty"`       // 退货运单对应的原运单ID
	CargoPricePaymentID *uint `gorm:"index" json:"cargo_price_payment_id,omitempty"`        // 所属代收转款单ID
	CargoPriceStatus    int   `gorm:"index;not null;default:0" json:"cargo_price_status"`   // 代收货款状态（冗余字段，保存时重算）

	SrcDepartment *Department `gorm:"foreignKey:SrcDepartmentID" json:"src_department,omitempty"` // 发货部门
	DstDepartment *Department `gorm:"foreignKey:DstDepartmentID" json:"dst_department,omitempty"` // 收货部门
	SrcCustomer   *Customer   `gorm:"foreignKey:SrcCustomerID" json:"src_customer,omitempty"`     // 发货客户
	DstCustomer   *Customer   `gorm:"foreignKey:DstCustomerID" json:"dst_customer,omitempty"`     // 收货客户
	ReturnWaybill *Waybill    `gorm:"foreignKey:ReturnWaybillID" json:"return_waybill,omitempty"` // 原运单
}

// TableName 指定表名
func (Waybill) TableName() string {
	return "waybills"
}

// IsReturnWaybill 是否为退货运单
func (w *Waybill) IsReturnWaybill() bool {
	return w != nil && w.ReturnWaybillID != nil
}

// FullID 运单显示编号，退货运单带 YF 前缀
func (w *Waybill) FullID() string {
	if w.IsReturnWaybill() {
		return fmt.Sprintf("YF%08d", w.ID)
	}
	return fmt.Sprintf("%08d", w.ID)
}

// StatusName 状态显示名称
func (w *Waybill) StatusName() string {
	return constants.WaybillStatusNames[w.Status]
}
