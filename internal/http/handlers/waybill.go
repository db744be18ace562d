package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/repository"
	"github.com/wuliu-next/internal/service"
)

// CreateWaybill 创建运单
func (h *Handler) CreateWaybill(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.WaybillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	waybill, err := h.WaybillService.Create(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"waybill": waybill, "full_id": waybill.FullID()})
}

// UpdateWaybill 编辑运单
func (h *Handler) UpdateWaybill(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.WaybillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	waybill, err := h.WaybillService.Update(actor, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, waybill)
}

// GetWaybill 运单详情
func (h *Handler) GetWaybill(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	waybill, err := h.WaybillService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"waybill": waybill, "full_id": waybill.FullID(), "status_name": waybill.StatusName()})
}

// waybillListFilter 从查询参数组装筛选条件
func waybillListFilter(c *gin.Context) repository.WaybillListFilter {
	page, pageSize := pageQuery(c)
	filter := repository.WaybillListFilter{Page: page, PageSize: pageSize}
	if v, err := strconv.Atoi(c.Query("status")); err == nil {
		filter.Status = &v
	}
	if v, err := strconv.Atoi(c.Query("fee_type")); err == nil {
		filter.FeeType = &v
	}
	if v, err := strconv.ParseUint(c.Query("src_department_id"), 10, 64); err == nil {
		filter.SrcDepartmentID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("dst_department_id"), 10, 64); err == nil {
		filter.DstDepartmentID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("src_customer_id"), 10, 64); err == nil {
		filter.SrcCustomerID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("dst_customer_id"), 10, 64); err == nil {
		filter.DstCustomerID = uint(v)
	}
	if t, err := time.ParseInLocation("2006-01-02", c.Query("created_from"), time.Local); err == nil {
		filter.CreatedFrom = &t
	}
	if t, err := time.ParseInLocation("2006-01-02", c.Query("created_to"), time.Local); err == nil {
		end := t.AddDate(0, 0, 1)
		filter.CreatedTo = &end
	}
	return filter
}

// ListWaybills 分页查询运单
func (h *Handler) ListWaybills(c *gin.Context) {
	filter := waybillListFilter(c)
	waybills, total, err := h.WaybillService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "运单查询失败", err)
		return
	}
	response.SuccessWithPage(c, waybills, buildPagination(filter.Page, filter.PageSize, total))
}

// SignForRequest 批量签收请求
type SignForRequest struct {
	WaybillIDs           []uint `json:"waybill_ids" binding:"required"`
	SignForName          string `json:"sign_for_name" binding:"required"`
	SignForCredentialNum string `json:"sign_for_credential_num" binding:"required"`
}

// SignForWaybills 批量签收
func (h *Handler) SignForWaybills(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req SignForRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if err := h.WaybillService.SignFor(actor, req.WaybillIDs, req.SignForName, req.SignForCredentialNum); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "签收成功", nil)
}

// DropWaybillRequest 作废请求
type DropWaybillRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DropWaybill 作废运单
func (h *Handler) DropWaybill(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req DropWaybillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if err := h.WaybillService.Drop(actor, id, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "运单已作废", nil)
}

// ReturnWaybillRequest 退货请求
type ReturnWaybillRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReturnWaybill 运单退货
func (h *Handler) ReturnWaybill(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ReturnWaybillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	returnWaybill, err := h.WaybillService.Return(actor, id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"return_waybill": returnWaybill, "full_id": returnWaybill.FullID()})
}

// GetWaybillRoutings 运单流转记录
func (h *Handler) GetWaybillRoutings(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	routings, err := h.WaybillService.Routings(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, routings)
}

// GetStandardFee 标准运费试算
func (h *Handler) GetStandardFee(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	dstID, err := strconv.ParseUint(c.Query("dst_department_id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "参数格式错误", nil)
		return
	}
	volume, err := decimal.NewFromString(c.Query("cargo_volume"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "参数格式错误", nil)
		return
	}
	weight, err := decimal.NewFromString(c.Query("cargo_weight"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "参数格式错误", nil)
		return
	}
	fee, err := h.WaybillService.StandardFee(actor.DepartmentID, uint(dstID), volume, weight)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"standard_fee": fee})
}
