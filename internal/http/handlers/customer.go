package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/repository"
	"github.com/wuliu-next/internal/service"
)

// CreateCustomer 创建客户
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req service.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	customer, err := h.CustomerService.Create(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, customer)
}

// UpdateCustomer 编辑客户
func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	customer, err := h.CustomerService.Update(id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, customer)
}

// GetCustomer 客户详情
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	customer, err := h.CustomerService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, customer)
}

// FindCustomerByPhone 按手机号查询客户，录单时快速带出
func (h *Handler) FindCustomerByPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		respondError(c, response.CodeBadRequest, "手机号不能为空", nil)
		return
	}
	customer, err := h.CustomerService.GetByPhone(phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, customer)
}

// ListCustomers 分页查询客户
func (h *Handler) ListCustomers(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		Name:     c.Query("name"),
		Phone:    c.Query("phone"),
		VIPOnly:  c.Query("vip_only") == "true",
	}
	customers, total, err := h.CustomerService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "客户查询失败", err)
		return
	}
	response.SuccessWithPage(c, customers, buildPagination(page, pageSize, total))
}

// AdjustCustomerScoreRequest 积分调整请求
type AdjustCustomerScoreRequest struct {
	Increase bool   `json:"increase"`
	Score    int    `json:"score" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// AdjustCustomerScore 人工调整客户积分
func (h *Handler) AdjustCustomerScore(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req AdjustCustomerScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	customer, err := h.CustomerScoreService.Adjust(actor, id, req.Increase, req.Score, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, customer)
}

// ListCustomerScoreLogs 分页查询积分流水
func (h *Handler) ListCustomerScoreLogs(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.CustomerScoreLogListFilter{Page: page, PageSize: pageSize}
	if v, err := strconv.ParseUint(c.Query("customer_id"), 10, 64); err == nil {
		filter.CustomerID = uint(v)
	}
	logs, total, err := h.CustomerScoreService.Logs(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "积分流水查询失败", err)
		return
	}
	response.SuccessWithPage(c, logs, buildPagination(page, pageSize, total))
}
