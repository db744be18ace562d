package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/repository"
	"github.com/wuliu-next/internal/service"
)

// CreateDepartment 创建部门
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req service.DepartmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	dept, err := h.DepartmentService.Create(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, dept)
}

// UpdateDepartment 编辑部门
func (h *Handler) UpdateDepartment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req service.DepartmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	dept, err := h.DepartmentService.Update(id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, dept)
}

// DeleteDepartment 删除部门
func (h *Handler) DeleteDepartment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.DepartmentService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "部门已删除", nil)
}

// GetDepartment 部门详情
func (h *Handler) GetDepartment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	dept, err := h.DepartmentService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, dept)
}

// ListDepartments 分页查询部门
func (h *Handler) ListDepartments(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.DepartmentListFilter{
		Page:     page,
		PageSize: pageSize,
		Name:     c.Query("name"),
	}
	if v, err := strconv.ParseUint(c.Query("parent_id"), 10, 64); err == nil {
		filter.ParentID = uint(v)
	}
	depts, total, err := h.DepartmentService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "部门查询失败", err)
		return
	}
	response.SuccessWithPage(c, depts, buildPagination(page, pageSize, total))
}

// ListAllDepartments 全量部门列表，表单下拉使用
func (h *Handler) ListAllDepartments(c *gin.Context) {
	depts, err := h.DepartmentService.ListAll()
	if err != nil {
		respondError(c, response.CodeInternal, "部门查询失败", err)
		return
	}
	response.Success(c, depts)
}
