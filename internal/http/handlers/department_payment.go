package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/repository"
)

// CreateDepartmentPaymentRequest 创建结算单请求
type CreateDepartmentPaymentRequest struct {
	SrcDepartmentID uint   `json:"src_department_id" binding:"required"`
	PaymentDate     string `json:"payment_date" binding:"required"` // 格式 2006-01-02
}

// CreateDepartmentPayment 创建部门结算单，成员运单按结算规则派生
func (h *Handler) CreateDepartmentPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateDepartmentPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	paymentDate, err := time.ParseInLocation("2006-01-02", req.PaymentDate, time.Local)
	if err != nil {
		respondError(c, response.CodeBadRequest, "结算日期格式错误", nil)
		return
	}
	payment, err := h.DepartmentPaymentService.Add(actor, req.SrcDepartmentID, paymentDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"payment": payment, "full_id": payment.FullID()})
}

// DeleteDepartmentPayment 删除结算单
func (h *Handler) DeleteDepartmentPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.DepartmentPaymentService.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "结算单已删除", nil)
}

// ReviewDepartmentPayment 审核
func (h *Handler) ReviewDepartmentPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.DepartmentPaymentService.Review(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "结算单已审核", nil)
}

// PayDepartmentPayment 付款
func (h *Handler) PayDepartmentPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.DepartmentPaymentService.Pay(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "结算单已付款", nil)
}

// SettleDepartmentPayment 核对完成并发放客户积分
func (h *Handler) SettleDepartmentPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.DepartmentPaymentService.Settle(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "结算单已核对", nil)
}

// UpdateDepartmentPaymentRemarkRequest 更新备注请求
type UpdateDepartmentPaymentRemarkRequest struct {
	Remark string `json:"remark"`
}

// UpdateDepartmentPaymentRemark 更新本方备注
func (h *Handler) UpdateDepartmentPaymentRemark(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateDepartmentPaymentRemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if err := h.DepartmentPaymentService.UpdateRemark(actor, id, req.Remark); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "备注已更新", nil)
}

// GetDepartmentPayment 结算单详情（含三项金额）
func (h *Handler) GetDepartmentPayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	payment, err := h.DepartmentPaymentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	totals := h.DepartmentPaymentService.Totals(payment, payment.Waybills)
	response.Success(c, gin.H{
		"payment": payment,
		"full_id": payment.FullID(),
		"totals":  totals,
	})
}

// ListDepartmentPayments 分页查询结算单
func (h *Handler) ListDepartmentPayments(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.DepartmentPaymentListFilter{Page: page, PageSize: pageSize}
	if v, err := strconv.Atoi(c.Query("status")); err == nil {
		filter.Status = &v
	}
	if v, err := strconv.ParseUint(c.Query("src_department_id"), 10, 64); err == nil {
		filter.SrcDepartmentID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("dst_department_id"), 10, 64); err == nil {
		filter.DstDepartmentID = uint(v)
	}
	payments, total, err := h.DepartmentPaymentService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "结算单查询失败", err)
		return
	}
	response.SuccessWithPage(c, payments, buildPagination(page, pageSize, total))
}
