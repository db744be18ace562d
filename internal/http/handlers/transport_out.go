package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/repository"
	"github.com/wuliu-next/internal/service"
)

// CreateTransportOut 创建车次并装车
func (h *Handler) CreateTransportOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req service.TransportOutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	transportOut, err := h.TransportOutService.Create(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"transport_out": transportOut, "full_id": transportOut.FullID()})
}

// UpdateTransportOut 编辑车次
func (h *Handler) UpdateTransportOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.TransportOutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	transportOut, err := h.TransportOutService.Update(actor, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, transportOut)
}

// DeleteTransportOut 删除车次
func (h *Handler) DeleteTransportOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.TransportOutService.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "车次已删除", nil)
}

// StartTransportOut 发车
func (h *Handler) StartTransportOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.TransportOutService.Start(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "发车成功", nil)
}

// ConfirmTransportOutArrival 到达确认
func (h *Handler) ConfirmTransportOutArrival(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.TransportOutService.ConfirmArrival(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "到达确认成功", nil)
}

// GetTransportOut 车次详情
func (h *Handler) GetTransportOut(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	transportOut, err := h.TransportOutService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"transport_out": transportOut,
		"full_id":       transportOut.FullID(),
		"status_name":   transportOut.StatusName(),
	})
}

// ListTransportOuts 分页查询车次
func (h *Handler) ListTransportOuts(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.TransportOutListFilter{Page: page, PageSize: pageSize}
	if v, err := strconv.Atoi(c.Query("status")); err == nil {
		filter.Status = &v
	}
	if v, err := strconv.ParseUint(c.Query("src_department_id"), 10, 64); err == nil {
		filter.SrcDepartmentID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("dst_department_id"), 10, 64); err == nil {
		filter.DstDepartmentID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("truck_id"), 10, 64); err == nil {
		filter.TruckID = uint(v)
	}
	transportOuts, total, err := h.TransportOutService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "车次查询失败", err)
		return
	}
	response.SuccessWithPage(c, transportOuts, buildPagination(page, pageSize, total))
}
