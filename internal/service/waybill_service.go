package service

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// WaybillService 运单服务
type WaybillService struct {
	waybillRepo    repository.WaybillRepository
	routingRepo    repository.WaybillRoutingRepository
	departmentRepo repository.DepartmentRepository
	customerRepo   repository.CustomerRepository
	paymentRepo    repository.CargoPricePaymentRepository
	settingSvc     *SettingService
}

// NewWaybillService 创建运单服务
func NewWaybillService(
	waybillRepo repository.WaybillRepository,
	routingRepo repository.WaybillRoutingRepository,
	departmentRepo repository.DepartmentRepository,
	customerRepo repository.CustomerRepository,
	paymentRepo repository.CargoPricePaymentRepository,
	settingSvc *SettingService,
) *WaybillService {
	return &WaybillService{
		waybillRepo:    waybillRepo,
		routingRepo:    routingRepo,
		departmentRepo: departmentRepo,
		customerRepo:   customerRepo,
		paymentRepo:    paymentRepo,
		settingSvc:     settingSvc,
	}
}

// WaybillInput 运单创建/编辑入参
type WaybillInput struct {
	DstDepartmentID  uint            `json:"dst_department_id"`
	SrcCustomerID    uint            `json:"src_customer_id"`
	DstCustomerID    uint            `json:"dst_customer_id"`
	CargoName        string          `json:"cargo_name"`
	CargoNum         int             `json:"cargo_num"`
	CargoVolume      decimal.Decimal `json:"cargo_volume"`
	CargoWeight      decimal.Decimal `json:"cargo_weight"`
	CargoPrice       models.Money    `json:"cargo_price"`
	CargoHandlingFee *models.Money   `json:"cargo_handling_fee,omitempty"`
	Fee              models.Money    `json:"fee"`
	FeeType          int             `json:"fee_type"`
	CustomerRemark   string          `json:"customer_remark"`
	CompanyRemark    string          `json:"company_remark"`
}

// Create 创建运单，发货部门固定为操作者所属部门
func (s *WaybillService) Create(actor Actor, input WaybillInput) (*models.Waybill, error) {
	waybill := &models.Waybill{
		SrcDepartmentID: actor.DepartmentID,
		Status:          constants.WaybillStatusCreated,
	}
	if err := s.applyInput(waybill, input); err != nil {
		return nil, err
	}

	err := s.waybillRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.waybillRepo.WithTx(tx).Create(waybill); err != nil {
			return err
		}
		return s.routingRepo.WithTx(tx).Create(&models.WaybillRouting{
			WaybillID:       waybill.ID,
			OperationType:   constants.WaybillStatusCreated,
			OperationDeptID: actor.DepartmentID,
			OperationUserID: actor.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("waybill_created",
		"waybill_id", waybill.ID,
		"src_department_id", waybill.SrcDepartmentID,
		"dst_department_id", waybill.DstDepartmentID,
		"user_id", actor.UserID,
	)
	return waybill, nil
}

// Update 编辑运单，仅「已创建」状态且本部门发出的运单可编辑
func (s *WaybillService) Update(actor Actor, id uint, input WaybillInput) (*models.Waybill, error) {
	var waybill *models.Waybill
	err := s.waybillRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		waybill, err = s.waybillRepo.WithTx(tx).GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if waybill == nil {
			return ErrWaybillNotFound
		}
		if waybill.Status != constants.WaybillStatusCreated {
			return ErrWaybillStatusInvalid
		}
		if !actor.IsAdministrator && waybill.SrcDepartmentID != actor.DepartmentID {
			return ErrWaybillDeptScope
		}
		if err := s.applyInput(waybill, input); err != nil {
			return err
		}
		return s.waybillRepo.WithTx(tx).Update(waybill)
	})
	if err != nil {
		return nil, err
	}
	return waybill, nil
}

// applyInput 校验入参并写入运单字段，代收手续费以服务端计算结果为准
func (s *WaybillService) applyInput(waybill *models.Waybill, input WaybillInput) error {
	if input.DstDepartmentID == waybill.SrcDepartmentID {
		return ErrWaybillSrcDstSame
	}
	srcDept, err := s.departmentRepo.GetByID(waybill.SrcDepartmentID)
	if err != nil {
		return err
	}
	dstDept, err := s.departmentRepo.GetByID(input.DstDepartmentID)
	if err != nil {
		return err
	}
	if srcDept == nil || dstDept == nil {
		return ErrDepartmentNotFound
	}
	if !srcDept.EnableSrc {
		return ErrWaybillSrcDisabled
	}
	if !dstDept.EnableDst {
		return ErrWaybillDstDisabled
	}

	srcCustomer, err := s.customerRepo.GetByID(input.SrcCustomerID)
	if err != nil {
		return err
	}
	dstCustomer, err := s.customerRepo.GetByID(input.DstCustomerID)
	if err != nil {
		return err
	}
	if srcCustomer == nil || dstCustomer == nil {
		return ErrCustomerNotFound
	}
	if !srcCustomer.Enabled || !dstCustomer.Enabled {
		return ErrCustomerDisabled
	}

	if input.CargoName == "" || input.CargoNum < 1 {
		return ErrWaybillInvalidField
	}
	if input.CargoVolume.LessThan(decimal.NewFromFloat(0.01)) {
		return ErrWaybillInvalidField
	}
	if input.CargoWeight.LessThan(decimal.NewFromFloat(0.1)) {
		return ErrWaybillInvalidField
	}
	if input.Fee.LessThan(decimal.NewFromInt(1)) {
		return ErrWaybillInvalidField
	}
	if input.CargoPrice.IsNegative() {
		return ErrWaybillInvalidField
	}
	if _, ok := constants.FeeTypeNames[input.FeeType]; !ok {
		return ErrWaybillInvalidField
	}
	if input.CargoPrice.IsPositive() && !dstDept.EnableCargoPrice {
		return ErrWaybillCargoPriceDisabled
	}
	if input.FeeType == constants.FeeTypeDeduction {
		if !input.CargoPrice.IsPositive() {
			return ErrWaybillInvalidField
		}
		if input.Fee.GreaterThan(input.CargoPrice.Decimal) {
			return ErrWaybillDeductionExceeds
		}
	}

	setting, err := s.settingSvc.Get()
	if err != nil {
		return err
	}
	handlingFee := CalcHandlingFee(input.CargoPrice, setting.HandlingFeeRatio)
	if input.CargoHandlingFee != nil && !input.CargoHandlingFee.Equal(handlingFee.Decimal) {
		return ErrWaybillHandlingFeeMismatch
	}

	waybill.DstDepartmentID = input.DstDepartmentID
	waybill.SrcCustomerID = &srcCustomer.ID
	waybill.DstCustomerID = &dstCustomer.ID
	waybill.SrcCustomerName = srcCustomer.Name
	waybill.SrcCustomerPhone = srcCustomer.Phone
	waybill.SrcCustomerCredentialNum = srcCustomer.CredentialNum
	waybill.SrcCustomerAddress = srcCustomer.Address
	waybill.DstCustomerName = dstCustomer.Name
	waybill.DstCustomerPhone = dstCustomer.Phone
	waybill.DstCustomerCredentialNum = dstCustomer.CredentialNum
	waybill.DstCustomerAddress = dstCustomer.Address
	waybill.CargoName = input.CargoName
	waybill.CargoNum = input.CargoNum
	waybill.CargoVolume = input.CargoVolume
	waybill.CargoWeight = input.CargoWeight
	waybill.CargoPrice = input.CargoPrice
	waybill.CargoHandlingFee = handlingFee
	waybill.Fee = input.Fee
	waybill.FeeType = input.FeeType
	waybill.CustomerRemark = input.CustomerRemark
	waybill.CompanyRemark = input.CompanyRemark
	waybill.CargoPriceStatus = computeCargoPriceStatus(waybill, nil)
	return nil
}

// computeCargoPriceStatus 重算代收货款冗余状态
func computeCargoPriceStatus(waybill *models.Waybill, payment *models.CargoPricePayment) int {
	if !waybill.CargoPrice.IsPositive() {
		return constants.CargoPriceStatusNone
	}
	if payment != nil && payment.Status == constants.CargoPricePaymentStatusPaid {
		return constants.CargoPriceStatusPaid
	}
	return constants.CargoPriceStatusNotPaid
}

// VerifyHandlingFee 按当前比例重算并核对运单的代收手续费
func VerifyHandlingFee(waybill *models.Waybill, ratio decimal.Decimal) bool {
	return CalcHandlingFee(waybill.CargoPrice, ratio).Equal(waybill.CargoHandlingFee.Decimal)
}

// SignFor 批量签收，运单必须全部处于「已到达」且收货部门为操作者部门
func (s *WaybillService) SignFor(actor Actor, ids []uint, signForName, signForCredentialNum string) error {
	if len(ids) == 0 {
		return ErrWaybillNotFound
	}
	if signForName == "" || signForCredentialNum == "" {
		return ErrWaybillInvalidField
	}
	err := s.waybillRepo.Transaction(func(tx *gorm.DB) error {
		txWaybills := s.waybillRepo.WithTx(tx)
		waybills, err := txWaybills.ListByIDsForUpdate(ids)
		if err != nil {
			return err
		}
		if len(waybills) != len(ids) {
			return ErrWaybillNotFound
		}
		for i := range waybills {
			w := &waybills[i]
			if w.Status != constants.WaybillStatusArrived {
				return ErrWaybillStatusInvalid
			}
			if !actor.IsAdministrator && w.DstDepartmentID != actor.DepartmentID {
				return ErrWaybillDeptScope
			}
		}

		now := time.Now()
		routings := make([]models.WaybillRouting, 0, len(waybills))
		for i := range waybills {
			w := &waybills[i]
			if err := txWaybills.UpdateFields(w.ID, map[string]interface{}{
				"status":                  constants.WaybillStatusSignedFor,
				"sign_for_time":           now,
				"sign_for_name":           signForName,
				"sign_for_credential_num": signForCredentialNum,
			}); err != nil {
				return err
			}
			routings = append(routings, models.WaybillRouting{
				WaybillID:       w.ID,
				OperationType:   constants.WaybillStatusSignedFor,
				OperationDeptID: actor.DepartmentID,
				OperationUserID: actor.UserID,
				Metadata:        models.JSON{"sign_for_name": signForName},
			})
		}
		return s.routingRepo.WithTx(tx).CreateBatch(routings)
	})
	if err != nil {
		return err
	}
	logger.Infow("waybills_signed_for", "waybill_ids", ids, "user_id", actor.UserID)
	return nil
}

// Drop 作废运单，仅「已创建」状态可作废，退货运单不可作废
func (s *WaybillService) Drop(actor Actor, id uint, reason string) error {
	if reason == "" {
		return ErrWaybillInvalidField
	}
	return s.waybillRepo.Transaction(func(tx *gorm.DB) error {
		txWaybills := s.waybillRepo.WithTx(tx)
		waybill, err := txWaybills.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if waybill == nil {
			return ErrWaybillNotFound
		}
		if waybill.IsReturnWaybill() {
			return ErrWaybillIsReturn
		}
		if waybill.Status != constants.WaybillStatusCreated {
			return ErrWaybillStatusInvalid
		}
		if !actor.IsAdministrator && waybill.SrcDepartmentID != actor.DepartmentID {
			return ErrWaybillDeptScope
		}
		if err := txWaybills.UpdateFields(waybill.ID, map[string]interface{}{
			"status":      constants.WaybillStatusDropped,
			"drop_reason": reason,
		}); err != nil {
			return err
		}
		return s.routingRepo.WithTx(tx).Create(&models.WaybillRouting{
			WaybillID:       waybill.ID,
			OperationType:   constants.WaybillStatusDropped,
			OperationDeptID: actor.DepartmentID,
			OperationUserID: actor.UserID,
			Metadata:        models.JSON{"drop_reason": reason},
		})
	})
}

// Return 退货：原运单置为「已退货」，同时生成一张反向的退货运单
// 退货运单运费规则：原运单现付时运费不变，否则翻倍；运费支付方式固定提付，代收货款清零
func (s *WaybillService) Return(actor Actor, id uint, reason string) (*models.Waybill, error) {
	if reason == "" {
		return nil, ErrWaybillInvalidField
	}
	var returnWaybill *models.Waybill
	err := s.waybillRepo.Transaction(func(tx *gorm.DB) error {
		txWaybills := s.waybillRepo.WithTx(tx)
		original, err := txWaybills.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if original == nil {
			return ErrWaybillNotFound
		}
		if original.IsReturnWaybill() {
			return ErrWaybillIsReturn
		}
		if original.Status != constants.WaybillStatusArrived {
			return ErrWaybillStatusInvalid
		}
		if !actor.IsAdministrator && original.DstDepartmentID != actor.DepartmentID {
			return ErrWaybillDeptScope
		}

		fee := original.Fee
		if original.FeeType != constants.FeeTypeNow {
			fee = models.NewMoneyFromDecimal(original.Fee.Mul(decimal.NewFromInt(2)))
		}

		// 两端客户快照整体换位，沿用原运单开单时的快照值
		returnWaybill = &models.Waybill{
			SrcDepartmentID:          original.DstDepartmentID,
			DstDepartmentID:          original.SrcDepartmentID,
			SrcCustomerID:            original.DstCustomerID,
			DstCustomerID:            original.SrcCustomerID,
			SrcCustomerName:          original.DstCustomerName,
			SrcCustomerPhone:         original.DstCustomerPhone,
			SrcCustomerCredentialNum: original.DstCustomerCredentialNum,
			SrcCustomerAddress:       original.DstCustomerAddress,
			DstCustomerName:          original.SrcCustomerName,
			DstCustomerPhone:         original.SrcCustomerPhone,
			DstCustomerCredentialNum: original.SrcCustomerCredentialNum,
			DstCustomerAddress:       original.SrcCustomerAddress,
			CargoName:                original.CargoName,
			CargoNum:                 original.CargoNum,
			CargoVolume:              original.CargoVolume,
			CargoWeight:              original.CargoWeight,
			CargoPrice:               models.NewMoneyFromInt(0),
			CargoHandlingFee:         models.NewMoneyFromInt(0),
			Fee:                      fee,
			FeeType:                  constants.FeeTypeSignFor,
			CustomerRemark:           original.CustomerRemark,
			Status:                   constants.WaybillStatusCreated,
			ReturnWaybillID:          &original.ID,
			CargoPriceStatus:         constants.CargoPriceStatusNone,
		}

		if err := txWaybills.Create(returnWaybill); err != nil {
			return err
		}
		if err := txWaybills.UpdateFields(original.ID, map[string]interface{}{
			"status": constants.WaybillStatusReturned,
		}); err != nil {
			return err
		}
		return s.routingRepo.WithTx(tx).CreateBatch([]models.WaybillRouting{
			{
				WaybillID:       original.ID,
				OperationType:   constants.WaybillStatusReturned,
				OperationDeptID: actor.DepartmentID,
				OperationUserID: actor.UserID,
				Metadata:        models.JSON{"return_waybill_id": returnWaybill.ID, "return_reason": reason},
			},
			{
				WaybillID:       returnWaybill.ID,
				OperationType:   constants.WaybillStatusCreated,
				OperationDeptID: actor.DepartmentID,
				OperationUserID: actor.UserID,
				Metadata:        models.JSON{"original_waybill_id": original.ID},
			},
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("waybill_returned",
		"waybill_id", id,
		"return_waybill_id", returnWaybill.ID,
		"user_id", actor.UserID,
	)
	return returnWaybill, nil
}

// Get 获取运单详情
func (s *WaybillService) Get(id uint) (*models.Waybill, error) {
	waybill, err := s.waybillRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if waybill == nil {
		return nil, ErrWaybillNotFound
	}
	return waybill, nil
}

// List 分页查询运单
func (s *WaybillService) List(filter repository.WaybillListFilter) ([]models.Waybill, int64, error) {
	return s.waybillRepo.List(filter)
}

// Routings 查询运单流转记录
func (s *WaybillService) Routings(waybillID uint) ([]models.WaybillRouting, error) {
	waybill, err := s.waybillRepo.GetByID(waybillID)
	if err != nil {
		return nil, err
	}
	if waybill == nil {
		return nil, ErrWaybillNotFound
	}
	return s.routingRepo.ListByWaybillID(waybillID)
}

// StandardFee 按两端部门单价估算标准运费：(发货单价 + 收货单价) × 体积 × 重量
func (s *WaybillService) StandardFee(srcDepartmentID, dstDepartmentID uint, volume, weight decimal.Decimal) (models.Money, error) {
	srcDept, err := s.departmentRepo.GetByID(srcDepartmentID)
	if err != nil {
		return models.Money{}, err
	}
	dstDept, err := s.departmentRepo.GetByID(dstDepartmentID)
	if err != nil {
		return models.Money{}, err
	}
	if srcDept == nil || dstDept == nil {
		return models.Money{}, ErrDepartmentNotFound
	}
	return CalcStandardFee(srcDept.UnitPrice, dstDept.UnitPrice, volume, weight), nil
}
