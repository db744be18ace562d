package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/repository"
	"github.com/wuliu-next/internal/service"
)

// CreateTruck 登记车辆
func (h *Handler) CreateTruck(c *gin.Context) {
	var req service.TruckInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	truck, err := h.TruckService.Create(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, truck)
}

// UpdateTruck 编辑车辆
func (h *Handler) UpdateTruck(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.TruckInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	truck, err := h.TruckService.Update(id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, truck)
}

// GetTruck 车辆详情
func (h *Handler) GetTruck(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	truck, err := h.TruckService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, truck)
}

// ListTrucks 分页查询车辆
func (h *Handler) ListTrucks(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.TruckListFilter{
		Page:        page,
		PageSize:    pageSize,
		PlateNumber: c.Query("plate_number"),
		EnabledOnly: c.Query("enabled_only") == "true",
	}
	trucks, total, err := h.TruckService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "车辆查询失败", err)
		return
	}
	response.SuccessWithPage(c, trucks, buildPagination(page, pageSize, total))
}
