package constants

// 运单状态常量（取有序整数值，业务规则依赖大小比较）
const (
	WaybillStatusCreated           = 0 // 已创建
	WaybillStatusLoaded            = 1 // 已装车
	WaybillStatusDeparted          = 2 // 已发车
	WaybillStatusGoodsYardArrived  = 3 // 已到达货场
	WaybillStatusGoodsYardLoaded   = 4 // 货场已装车
	WaybillStatusGoodsYardDeparted = 5 // 货场已发车
	WaybillStatusArrived           = 6 // 已到达
	WaybillStatusSignedFor         = 7 // 已签收
	WaybillStatusReturned          = 8 // 已退货
	WaybillStatusDropped           = 9 // 已作废
)

// WaybillStatusNames 运单状态名称
var WaybillStatusNames = map[int]string{
	WaybillStatusCreated:           "已创建",
	WaybillStatusLoaded:            "已装车",
	WaybillStatusDeparted:          "已发车",
	WaybillStatusGoodsYardArrived:  "已到达货场",
	WaybillStatusGoodsYardLoaded:   "货场已装车",
	WaybillStatusGoodsYardDeparted: "货场已发车",
	WaybillStatusArrived:           "已到达",
	WaybillStatusSignedFor:         "已签收",
	WaybillStatusReturned:          "已退货",
	WaybillStatusDropped:           "已作废",
}

// 运费支付方式常量
const (
	FeeTypeSignFor   = 0 // 提付（签收时收取）
	FeeTypeNow       = 1 // 现付（发货时收取）
	FeeTypeDeduction = 2 // 扣付（从代收货款中扣除）
)

// FeeTypeNames 运费支付方式名称
var FeeTypeNames = map[int]string{
	FeeTypeSignFor:   "提付",
	FeeTypeNow:       "现付",
	FeeTypeDeduction: "扣付",
}

// 代收货款状态常量（运单冗余字段，每次保存时重算）
const (
	CargoPriceStatusNone    = 0 // 无代收货款
	CargoPriceStatusNotPaid = 1 // 未转款
	CargoPriceStatusPaid    = 2 // 已转款
)

// 车次状态常量
const (
	TransportOutStatusReady    = 0 // 待发车
	TransportOutStatusOnTheWay = 1 // 在途
	TransportOutStatusArrived  = 2 // 已到达
)

// TransportOutStatusNames 车次状态名称
var TransportOutStatusNames = map[int]string{
	TransportOutStatusReady:    "待发车",
	TransportOutStatusOnTheWay: "在途",
	TransportOutStatusArrived:  "已到达",
}

// 代收转款单状态常量
const (
	CargoPricePaymentStatusCreated   = 0 // 已创建
	CargoPricePaymentStatusSubmitted = 1 // 已提交
	CargoPricePaymentStatusReviewed  = 2 // 已审核
	CargoPricePaymentStatusPaid      = 3 // 已转款
	CargoPricePaymentStatusRejected  = 4 // 已驳回
)

// 部门结算单状态常量
const (
	DepartmentPaymentStatusCreated  = 0 // 已创建
	DepartmentPaymentStatusReviewed = 1 // 已审核
	DepartmentPaymentStatusPaid     = 2 // 已付款
	DepartmentPaymentStatusSettled  = 3 // 已核对
)

// 用户类型常量（由管理员标志与所属部门派生）
const (
	UserTypeAdministrator = "administrator"
	UserTypeCompany       = "company"
	UserTypeBranch        = "branch"
	UserTypeGoodsYard     = "goods_yard"
)

// GoodsYardName 货场部门的保留名称，部门是否为货场由名称判定
const GoodsYardName = "货场"

// 权限名称常量
const (
	PermManageWaybill                        = "manage_waybill"
	PermManageSignFor                        = "manage_sign_for"
	PermManageDropWaybill                    = "manage_drop_waybill"
	PermManageReturnWaybill                  = "manage_return_waybill"
	PermManageTransportOutAddEditDeleteStart = "manage_transport_out__add_edit_delete_start"
	PermManageTransportOutArrived            = "manage_transport_out__arrived"
	PermManageCargoPricePaymentAddEditDelete = "manage_cargo_price_payment__add_edit_delete_submit"
	PermManageCargoPricePaymentReviewReject  = "manage_cargo_price_payment__review_reject"
	PermManageCargoPricePaymentPay           = "manage_cargo_price_payment__pay"
	PermManageDepartmentPaymentAddDelete     = "manage_department_payment__add_delete"
	PermManageDepartmentPaymentReview        = "manage_department_payment__review"
	PermManageDepartmentPaymentPay           = "manage_department_payment__pay"
	PermManageDepartmentPaymentSettle        = "manage_department_payment__settle"
	PermManageCustomer                       = "manage_customer"
	PermManageCustomerScoreLog               = "manage_customer_score_log"
	PermManageTruck                          = "manage_truck"
	PermManageDepartment                     = "manage_department"
	PermManageUser                           = "manage_user"
	PermManageSettings                       = "manage_settings"
)

// PermissionNames 全部权限名与说明，初始化权限表时使用
var PermissionNames = map[string]string{
	PermManageWaybill:                        "运单管理",
	PermManageSignFor:                        "运单签收",
	PermManageDropWaybill:                    "运单作废",
	PermManageReturnWaybill:                  "运单退货",
	PermManageTransportOutAddEditDeleteStart: "车次管理（创建/编辑/删除/发车）",
	PermManageTransportOutArrived:            "车次到达确认",
	PermManageCargoPricePaymentAddEditDelete: "代收转款单管理（创建/编辑/删除/提交）",
	PermManageCargoPricePaymentReviewReject:  "代收转款单审核/驳回",
	PermManageCargoPricePaymentPay:           "代收转款单转款",
	PermManageDepartmentPaymentAddDelete:     "部门结算单管理（创建/删除）",
	PermManageDepartmentPaymentReview:        "部门结算单审核",
	PermManageDepartmentPaymentPay:           "部门结算单付款",
	PermManageDepartmentPaymentSettle:        "部门结算单核对",
	PermManageCustomer:                       "客户管理",
	PermManageCustomerScoreLog:               "客户积分管理",
	PermManageTruck:                          "车辆管理",
	PermManageDepartment:                     "部门管理",
	PermManageUser:                           "用户管理",
	PermManageSettings:                       "系统设置管理",
}

// 全局设置默认值
const (
	DefaultCompanyName        = "PP物流"
	DefaultHandlingFeeRatio   = "0.002"
	DefaultCustomerScoreRatio = "1"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "wl"
)
