package service

import "errors"

// 通用错误
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("原密码错误")
	ErrPasswordTooShort   = errors.New("密码长度不符合要求")
	ErrUserDisabled       = errors.New("用户已被禁用")
	ErrPermissionDenied   = errors.New("没有执行该操作的权限")
)

// 全局设置错误
var (
	ErrSettingDuplicate    = errors.New("全局设置仅允许存在一行")
	ErrSettingInvalidRatio = errors.New("比例必须位于 (0, 1] 区间内")
	ErrSettingNameEmpty    = errors.New("公司名称不能为空")
)

// 部门错误
var (
	ErrDepartmentNotFound      = errors.New("部门不存在")
	ErrDepartmentNameTaken     = errors.New("部门名称已被使用")
	ErrDepartmentNameEmpty     = errors.New("部门名称不能为空")
	ErrDepartmentInvalidParent = errors.New("分组下的部门运费单价必须大于 0 且不能再是分组；非分组下的部门运费单价必须为 0")
	ErrDepartmentInUse         = errors.New("部门下存在用户或下级部门，无法删除")
)

// 用户错误
var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrUserNameTaken     = errors.New("用户名已被使用")
	ErrUserNameEmpty     = errors.New("用户名不能为空")
	ErrLastAdministrator = errors.New("系统至少需要保留一名启用状态的管理员")
)

// 客户错误
var (
	ErrCustomerNotFound     = errors.New("客户不存在")
	ErrCustomerInvalidField = errors.New("客户姓名与手机号不能为空")
	ErrCustomerPhoneTaken   = errors.New("手机号已被使用")
	ErrCustomerDisabled     = errors.New("客户已被禁用")
	ErrCustomerNotVIP       = errors.New("客户不是 VIP，无法调整积分")
	ErrScoreInsufficient    = errors.New("客户积分余额不足")
	ErrScoreInvalid         = errors.New("积分变动值必须大于 0 且必须填写原因")
)

// 车辆错误
var (
	ErrTruckNotFound     = errors.New("车辆不存在")
	ErrTruckPlateTaken   = errors.New("车牌号已被使用")
	ErrTruckDisabled     = errors.New("车辆已被禁用")
	ErrTruckInvalidField = errors.New("车牌号与司机信息不能为空")
)

// 运单错误
var (
	ErrWaybillNotFound            = errors.New("运单不存在")
	ErrWaybillStatusInvalid       = errors.New("运单当前状态不允许该操作")
	ErrWaybillSrcDstSame          = errors.New("发货部门与收货部门不能相同")
	ErrWaybillSrcDisabled         = errors.New("发货部门未开启发货功能")
	ErrWaybillDstDisabled         = errors.New("收货部门未开启收货功能")
	ErrWaybillCargoPriceDisabled  = errors.New("收货部门未开启代收货款功能")
	ErrWaybillDeductionExceeds    = errors.New("扣付运费不能超过代收货款")
	ErrWaybillHandlingFeeMismatch = errors.New("代收手续费与系统计算结果不一致")
	ErrWaybillDeptScope           = errors.New("只能操作本部门的运单")
	ErrWaybillIsReturn            = errors.New("退货运单不允许该操作")
	ErrWaybillInvalidField        = errors.New("运单字段校验失败")
)

// 车次错误
var (
	ErrTransportOutNotFound        = errors.New("车次不存在")
	ErrTransportOutStatusInvalid   = errors.New("车次当前状态不允许该操作")
	ErrTransportOutDeptScope       = errors.New("只能操作本部门始发的车次")
	ErrTransportOutRouteInvalid    = errors.New("车次线路不合法：货场只可发往分支机构，分支机构只可发往货场")
	ErrTransportOutWaybillStatus   = errors.New("存在状态不符合装车条件的运单")
	ErrTransportOutWaybillOccupied = errors.New("存在已装载到其他车次的运单")
	ErrTransportOutEmpty           = errors.New("车次至少需要装载一张运单")
)

// 代收转款单错误
var (
	ErrCargoPricePaymentNotFound      = errors.New("代收转款单不存在")
	ErrCargoPricePaymentStatusInvalid = errors.New("代收转款单当前状态不允许该操作")
	ErrCargoPricePaymentNotCreator    = errors.New("只有创建人可以编辑或删除代收转款单")
	ErrCargoPricePaymentWaybill       = errors.New("存在不符合转款条件的运单：必须已签收、有代收货款且未挂入其他转款单")
	ErrCargoPricePaymentRejectReason  = errors.New("驳回时必须填写驳回原因")
)

// 部门结算单错误
var (
	ErrDepartmentPaymentNotFound      = errors.New("部门结算单不存在")
	ErrDepartmentPaymentStatusInvalid = errors.New("部门结算单当前状态不允许该操作")
	ErrDepartmentPaymentDuplicate     = errors.New("该部门在该结算日期已存在结算单")
	ErrDepartmentPaymentDateInvalid   = errors.New("结算日期必须早于今天")
)
