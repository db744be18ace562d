package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/repository"
	"github.com/wuliu-next/internal/service"
)

// CreateCargoPricePayment 创建代收转款单
func (h *Handler) CreateCargoPricePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.CargoPricePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	payment, err := h.CargoPricePaymentService.Add(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"payment": payment, "full_id": payment.FullID()})
}

// UpdateCargoPricePayment 编辑代收转款单
func (h *Handler) UpdateCargoPricePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.CargoPricePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	payment, err := h.CargoPricePaymentService.Update(actor, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, payment)
}

// DeleteCargoPricePayment 删除代收转款单
func (h *Handler) DeleteCargoPricePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.CargoPricePaymentService.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "转款单已删除", nil)
}

// SubmitCargoPricePayment 提交送审
func (h *Handler) SubmitCargoPricePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.CargoPricePaymentService.Submit(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "转款单已提交", nil)
}

// ReviewCargoPricePayment 审核通过
func (h *Handler) ReviewCargoPricePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.CargoPricePaymentService.Review(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "转款单已审核", nil)
}

// RejectCargoPricePaymentRequest 驳回请求
type RejectCargoPricePaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectCargoPricePayment 驳回
func (h *Handler) RejectCargoPricePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req RejectCargoPricePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if err := h.CargoPricePaymentService.Reject(actor, id, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "转款单已驳回", nil)
}

// PayCargoPricePayment 转款
func (h *Handler) PayCargoPricePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.CargoPricePaymentService.Pay(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "转款成功", nil)
}

// GetCargoPricePayment 转款单详情（含实际转款金额）
func (h *Handler) GetCargoPricePayment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	payment, err := h.CargoPricePaymentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"payment":   payment,
		"full_id":   payment.FullID(),
		"final_fee": h.CargoPricePaymentService.FinalFee(payment),
	})
}

// ListCargoPricePayments 分页查询转款单
func (h *Handler) ListCargoPricePayments(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.CargoPricePaymentListFilter{Page: page, PageSize: pageSize}
	if v, err := strconv.Atoi(c.Query("status")); err == nil {
		filter.Status = &v
	}
	if v, err := strconv.ParseUint(c.Query("create_user_id"), 10, 64); err == nil {
		filter.CreateUserID = uint(v)
	}
	payments, total, err := h.CargoPricePaymentService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "转款单查询失败", err)
		return
	}
	response.SuccessWithPage(c, payments, buildPagination(page, pageSize, total))
}
