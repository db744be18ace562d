package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

// TransportOutService 车次服务
// 线路规则：分支机构只可发往货场，货场只可发往分支机构
type TransportOutService struct {
	transportOutRepo repository.TransportOutRepository
	waybillRepo      repository.WaybillRepository
	routingRepo      repository.WaybillRoutingRepository
	departmentRepo   repository.DepartmentRepository
	truckRepo        repository.TruckRepository
}

// NewTransportOutService 创建车次服务
func NewTransportOutService(
	transportOutRepo repository.TransportOutRepository,
	waybillRepo repository.WaybillRepository,
	routingRepo repository.WaybillRoutingRepository,
	departmentRepo repository.DepartmentRepository,
	truckRepo repository.TruckRepository,
) *TransportOutService {
	return &TransportOutService{
		transportOutRepo: transportOutRepo,
		waybillRepo:      waybillRepo,
		routingRepo:      routingRepo,
		departmentRepo:   departmentRepo,
		truckRepo:        truckRepo,
	}
}

// TransportOutInput 车次创建/编辑入参
type TransportOutInput struct {
	TruckID         uint   `json:"truck_id"`
	DstDepartmentID uint   `json:"dst_department_id"`
	WaybillIDs      []uint `json:"waybill_ids"`
}

// loadStatus 返回在某出发部门装车前后的运单状态
func loadStatus(srcDept *models.Department) (before, after int) {
	if srcDept.IsGoodsYard() {
		return constants.WaybillStatusGoodsYardArrived, constants.WaybillStatusGoodsYardLoaded
	}
	return constants.WaybillStatusCreated, constants.WaybillStatusLoaded
}

// validateRoute 校验线路拓扑
func (s *TransportOutService) validateRoute(srcDept, dstDept *models.Department) error {
	if srcDept == nil || dstDept == nil {
		return ErrDepartmentNotFound
	}
	if srcDept.ID == dstDept.ID {
		return ErrTransportOutRouteInvalid
	}
	if srcDept.IsGoodsYard() {
		if !dstDept.IsBranch() {
			return ErrTransportOutRouteInvalid
		}
		return nil
	}
	if !srcDept.IsBranch() || !dstDept.IsGoodsYard() {
		return ErrTransportOutRouteInvalid
	}
	return nil
}

// validateMembers 校验待装车运单：状态一致且归属正确
func (s *TransportOutService) validateMembers(waybills []models.Waybill, srcDept *models.Department, dstDepartmentID uint) error {
	wantStatus, _ := loadStatus(srcDept)
	for i := range waybills {
		w := &waybills[i]
		if w.Status != wantStatus {
			// 状态已前移的运单必然装载在其他车次上
			if w.Status > wantStatus && w.Status < constants.WaybillStatusArrived {
				return ErrTransportOutWaybillOccupied
			}
			return ErrTransportOutWaybillStatus
		}
		if srcDept.IsGoodsYard() {
			// 货场发车只能装目的分支机构的运单
			if w.DstDepartmentID != dstDepartmentID {
				return ErrTransportOutWaybillStatus
			}
		} else if w.SrcDepartmentID != srcDept.ID {
			return ErrTransportOutWaybillStatus
		}
	}
	return nil
}

// Create 创建车次并装车，成员运单状态统一前移一步
func (s *TransportOutService) Create(actor Actor, input TransportOutInput) (*models.TransportOut, error) {
	if len(input.WaybillIDs) == 0 {
		return nil, ErrTransportOutEmpty
	}
	srcDept, err := s.departmentRepo.GetByID(actor.DepartmentID)
	if err != nil {
		return nil, err
	}
	dstDept, err := s.departmentRepo.GetByID(input.DstDepartmentID)
	if err != nil {
		return nil, err
	}
	if err := s.validateRoute(srcDept, dstDept); err != nil {
		return nil, err
	}
	truck, err := s.truckRepo.GetByID(input.TruckID)
	if err != nil {
		return nil, err
	}
	if truck == nil {
		return nil, ErrTruckNotFound
	}
	if !truck.Enabled {
		return nil, ErrTruckDisabled
	}

	transportOut := &models.TransportOut{
		TruckID:         truck.ID,
		DriverName:      truck.DriverName,
		DriverPhone:     truck.DriverPhone,
		SrcDepartmentID: srcDept.ID,
		DstDepartmentID: dstDept.ID,
		Status:          constants.TransportOutStatusReady,
	}

	err = s.transportOutRepo.Transaction(func(tx *gorm.DB) error {
		txWaybills := s.waybillRepo.WithTx(tx)
		waybills, err := txWaybills.ListByIDsForUpdate(input.WaybillIDs)
		if err != nil {
			return err
		}
		if len(waybills) != len(input.WaybillIDs) {
			return ErrWaybillNotFound
		}
		if err := s.validateMembers(waybills, srcDept, dstDept.ID); err != nil {
			return err
		}
		if err := s.transportOutRepo.WithTx(tx).Create(transportOut); err != nil {
			return err
		}
		if err := s.transportOutRepo.WithTx(tx).ReplaceWaybills(transportOut, waybills); err != nil {
			return err
		}
		_, loaded := loadStatus(srcDept)
		return s.advanceMembers(tx, actor, waybills, loaded, transportOut.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("transport_out_created",
		"transport_out_id", transportOut.ID,
		"src_department_id", transportOut.SrcDepartmentID,
		"dst_department_id", transportOut.DstDepartmentID,
		"waybill_count", len(input.WaybillIDs),
		"user_id", actor.UserID,
	)
	return transportOut, nil
}

// advanceMembers 成员运单状态统一前移并写流转记录
func (s *TransportOutService) advanceMembers(tx *gorm.DB, actor Actor, waybills []models.Waybill, status int, transportOutID uint) error {
	ids := make([]uint, 0, len(waybills))
	routings := make([]models.WaybillRouting, 0, len(waybills))
	for i := range waybills {
		ids = append(ids, waybills[i].ID)
		routings = append(routings, models.WaybillRouting{
			WaybillID:       waybills[i].ID,
			OperationType:   status,
			OperationDeptID: actor.DepartmentID,
			OperationUserID: actor.UserID,
			Metadata:        models.JSON{"transport_out_id": transportOutID},
		})
	}
	if err := s.waybillRepo.WithTx(tx).UpdateFieldsBulk(ids, map[string]interface{}{
		"status": status,
	}); err != nil {
		return err
	}
	return s.routingRepo.WithTx(tx).CreateBatch(routings)
}

// Update 编辑车次，仅「待发车」状态可编辑；成员差异按装车/卸车处理
// 卸车只回退运单状态，流转记录仅追加不回滚
func (s *TransportOutService) Update(actor Actor, id uint, input TransportOutInput) (*models.TransportOut, error) {
	if len(input.WaybillIDs) == 0 {
		return nil, ErrTransportOutEmpty
	}
	var transportOut *models.TransportOut
	err := s.transportOutRepo.Transaction(func(tx *gorm.DB) error {
		txTransport := s.transportOutRepo.WithTx(tx)
		var err error
		transportOut, err = txTransport.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if transportOut == nil {
			return ErrTransportOutNotFound
		}
		if transportOut.Status != constants.TransportOutStatusReady {
			return ErrTransportOutStatusInvalid
		}
		if !actor.IsAdministrator && transportOut.SrcDepartmentID != actor.DepartmentID {
			return ErrTransportOutDeptScope
		}

		srcDept, err := s.departmentRepo.GetByID(transportOut.SrcDepartmentID)
		if err != nil {
			return err
		}
		dstDept, err := s.departmentRepo.GetByID(input.DstDepartmentID)
		if err != nil {
			return err
		}
		if err := s.validateRoute(srcDept, dstDept); err != nil {
			return err
		}
		truck, err := s.truckRepo.GetByID(input.TruckID)
		if err != nil {
			return err
		}
		if truck == nil {
			return ErrTruckNotFound
		}
		if !truck.Enabled {
			return ErrTruckDisabled
		}

		currentIDs, err := txTransport.ListWaybillIDs(id)
		if err != nil {
			return err
		}
		current := make(map[uint]bool, len(currentIDs))
		for _, wid := range currentIDs {
			current[wid] = true
		}
		next := make(map[uint]bool, len(input.WaybillIDs))
		for _, wid := range input.WaybillIDs {
			next[wid] = true
		}

		var addedIDs, removedIDs []uint
		for _, wid := range input.WaybillIDs {
			if !current[wid] {
				addedIDs = append(addedIDs, wid)
			}
		}
		for _, wid := range currentIDs {
			if !next[wid] {
				removedIDs = append(removedIDs, wid)
			}
		}

		txWaybills := s.waybillRepo.WithTx(tx)
		unloaded, loaded := loadStatus(srcDept)

		if len(addedIDs) > 0 {
			added, err := txWaybills.ListByIDsForUpdate(addedIDs)
			if err != nil {
				return err
			}
			if len(added) != len(addedIDs) {
				return ErrWaybillNotFound
			}
			if err := s.validateMembers(added, srcDept, dstDept.ID); err != nil {
				return err
			}
			if err := s.advanceMembers(tx, actor, added, loaded, transportOut.ID); err != nil {
				return err
			}
		}
		if len(removedIDs) > 0 {
			removed, err := txWaybills.ListByIDsForUpdate(removedIDs)
			if err != nil {
				return err
			}
			for i := range removed {
				if removed[i].Status != loaded {
					return ErrTransportOutWaybillStatus
				}
			}
			if err := txWaybills.UpdateFieldsBulk(removedIDs, map[string]interface{}{
				"status": unloaded,
			}); err != nil {
				return err
			}
		}

		transportOut.TruckID = truck.ID
		transportOut.DriverName = truck.DriverName
		transportOut.DriverPhone = truck.DriverPhone
		transportOut.DstDepartmentID = dstDept.ID
		if err := txTransport.Update(transportOut); err != nil {
			return err
		}

		members, err := txWaybills.ListByIDs(input.WaybillIDs)
		if err != nil {
			return err
		}
		return txTransport.ReplaceWaybills(transportOut, members)
	})
	if err != nil {
		return nil, err
	}
	return transportOut, nil
}

// Delete 删除车次，仅「待发车」状态可删，成员运单状态回退一步
func (s *TransportOutService) Delete(actor Actor, id uint) error {
	return s.transportOutRepo.Transaction(func(tx *gorm.DB) error {
		txTransport := s.transportOutRepo.WithTx(tx)
		transportOut, err := txTransport.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if transportOut == nil {
			return ErrTransportOutNotFound
		}
		if transportOut.Status != constants.TransportOutStatusReady {
			return ErrTransportOutStatusInvalid
		}
		if !actor.IsAdministrator && transportOut.SrcDepartmentID != actor.DepartmentID {
			return ErrTransportOutDeptScope
		}

		srcDept, err := s.departmentRepo.GetByID(transportOut.SrcDepartmentID)
		if err != nil {
			return err
		}
		if srcDept == nil {
			return ErrDepartmentNotFound
		}
		unloaded, _ := loadStatus(srcDept)

		memberIDs, err := txTransport.ListWaybillIDs(id)
		if err != nil {
			return err
		}
		if len(memberIDs) > 0 {
			if err := s.waybillRepo.WithTx(tx).UpdateFieldsBulk(memberIDs, map[string]interface{}{
				"status": unloaded,
			}); err != nil {
				return err
			}
		}
		return txTransport.Delete(transportOut)
	})
}

// Start 发车：车次转「在途」，成员运单状态统一前移一步
func (s *TransportOutService) Start(actor Actor, id uint) error {
	err := s.transportOutRepo.Transaction(func(tx *gorm.DB) error {
		txTransport := s.transportOutRepo.WithTx(tx)
		transportOut, err := txTransport.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if transportOut == nil {
			return ErrTransportOutNotFound
		}
		if transportOut.Status != constants.TransportOutStatusReady {
			return ErrTransportOutStatusInvalid
		}
		if !actor.IsAdministrator && transportOut.SrcDepartmentID != actor.DepartmentID {
			return ErrTransportOutDeptScope
		}

		srcDept, err := s.departmentRepo.GetByID(transportOut.SrcDepartmentID)
		if err != nil {
			return err
		}
		if srcDept == nil {
			return ErrDepartmentNotFound
		}
		memberIDs, err := txTransport.ListWaybillIDs(id)
		if err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return ErrTransportOutEmpty
		}
		members, err := s.waybillRepo.WithTx(tx).ListByIDsForUpdate(memberIDs)
		if err != nil {
			return err
		}

		_, loaded := loadStatus(srcDept)
		departed := constants.WaybillStatusDeparted
		if srcDept.IsGoodsYard() {
			departed = constants.WaybillStatusGoodsYardDeparted
		}
		for i := range members {
			if members[i].Status != loaded {
				return ErrTransportOutWaybillStatus
			}
		}

		now := time.Now()
		transportOut.Status = constants.TransportOutStatusOnTheWay
		transportOut.StartTime = &now
		if err := txTransport.Update(transportOut); err != nil {
			return err
		}
		return s.advanceMembers(tx, actor, members, departed, transportOut.ID)
	})
	if err != nil {
		return err
	}
	logger.Infow("transport_out_started", "transport_out_id", id, "user_id", actor.UserID)
	return nil
}

// ConfirmArrival 到达确认：由目的部门操作，车次转「已到达」
// 成员运单按目的部门类型进入「已到达货场」或「已到达」
func (s *TransportOutService) ConfirmArrival(actor Actor, id uint) error {
	err := s.transportOutRepo.Transaction(func(tx *gorm.DB) error {
		txTransport := s.transportOutRepo.WithTx(tx)
		transportOut, err := txTransport.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if transportOut == nil {
			return ErrTransportOutNotFound
		}
		if transportOut.Status != constants.TransportOutStatusOnTheWay {
			return ErrTransportOutStatusInvalid
		}
		if !actor.IsAdministrator && transportOut.DstDepartmentID != actor.DepartmentID {
			return ErrTransportOutDeptScope
		}

		dstDept, err := s.departmentRepo.GetByID(transportOut.DstDepartmentID)
		if err != nil {
			return err
		}
		if dstDept == nil {
			return ErrDepartmentNotFound
		}
		memberIDs, err := txTransport.ListWaybillIDs(id)
		if err != nil {
			return err
		}
		members, err := s.waybillRepo.WithTx(tx).ListByIDsForUpdate(memberIDs)
		if err != nil {
			return err
		}

		arrived := constants.WaybillStatusArrived
		if dstDept.IsGoodsYard() {
			arrived = constants.WaybillStatusGoodsYardArrived
		}
		for i := range members {
			if members[i].Status != constants.WaybillStatusDeparted &&
				members[i].Status != constants.WaybillStatusGoodsYardDeparted {
				return ErrTransportOutWaybillStatus
			}
		}

		now := time.Now()
		transportOut.Status = constants.TransportOutStatusArrived
		transportOut.EndTime = &now
		if err := txTransport.Update(transportOut); err != nil {
			return err
		}

		txWaybills := s.waybillRepo.WithTx(tx)
		ids := make([]uint, 0, len(members))
		routings := make([]models.WaybillRouting, 0, len(members))
		for i := range members {
			ids = append(ids, members[i].ID)
			routings = append(routings, models.WaybillRouting{
				WaybillID:       members[i].ID,
				OperationType:   arrived,
				OperationDeptID: actor.DepartmentID,
				OperationUserID: actor.UserID,
				Metadata:        models.JSON{"transport_out_id": transportOut.ID},
			})
		}
		updates := map[string]interface{}{"status": arrived}
		if arrived == constants.WaybillStatusArrived {
			updates["arrival_time"] = now
		}
		if err := txWaybills.UpdateFieldsBulk(ids, updates); err != nil {
			return err
		}
		return s.routingRepo.WithTx(tx).CreateBatch(routings)
	})
	if err != nil {
		return err
	}
	logger.Infow("transport_out_arrived", "transport_out_id", id, "user_id", actor.UserID)
	return nil
}

// Get 获取车次详情（含成员运单）
func (s *TransportOutService) Get(id uint) (*models.TransportOut, error) {
	transportOut, err := s.transportOutRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if transportOut == nil {
		return nil, ErrTransportOutNotFound
	}
	return transportOut, nil
}

// List 分页查询车次
func (s *TransportOutService) List(filter repository.TransportOutListFilter) ([]models.TransportOut, int64, error) {
	return s.transportOutRepo.List(filter)
}
