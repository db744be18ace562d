package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuliu-next/internal/http/response"
	"github.com/wuliu-next/internal/logger"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/service"
)

// requestLog 提供携带 request_id 的日志实例
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// respondError 返回错误响应，并在有原始错误时记录日志
func respondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		requestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// normalizePagination 归一化分页参数
func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// pageQuery 解析分页查询参数
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return normalizePagination(page, pageSize)
}

// buildPagination 组装分页响应信息
func buildPagination(page, pageSize int, total int64) response.Pagination {
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// idParam 解析路径中的 ID 参数
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "参数格式错误", nil)
		return 0, false
	}
	return uint(id), true
}

// currentUser 从上下文取出鉴权中间件写入的用户
func currentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		respondError(c, response.CodeUnauthorized, "未登录或登录已过期", nil)
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok || user == nil {
		respondError(c, response.CodeUnauthorized, "未登录或登录已过期", nil)
		return nil, false
	}
	return user, true
}

// currentActor 从上下文构建服务层操作者
func currentActor(c *gin.Context) (service.Actor, bool) {
	user, ok := currentUser(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.NewActor(user), true
}

var (
	notFoundErrors = []error{
		service.ErrNotFound,
		service.ErrUserNotFound,
		service.ErrCustomerNotFound,
		service.ErrTruckNotFound,
		service.ErrDepartmentNotFound,
		service.ErrWaybillNotFound,
		service.ErrTransportOutNotFound,
		service.ErrCargoPricePaymentNotFound,
		service.ErrDepartmentPaymentNotFound,
	}
	forbiddenErrors = []error{
		service.ErrPermissionDenied,
		service.ErrWaybillDeptScope,
		service.ErrTransportOutDeptScope,
		service.ErrCargoPricePaymentNotCreator,
	}
	conflictErrors = []error{
		service.ErrSettingDuplicate,
		service.ErrDepartmentNameTaken,
		service.ErrUserNameTaken,
		service.ErrCustomerPhoneTaken,
		service.ErrTruckPlateTaken,
		service.ErrDepartmentPaymentDuplicate,
		service.ErrTransportOutWaybillOccupied,
	}
	badRequestErrors = []error{
		service.ErrInvalidPassword,
		service.ErrPasswordTooShort,
		service.ErrSettingInvalidRatio,
		service.ErrSettingNameEmpty,
		service.ErrDepartmentNameEmpty,
		service.ErrDepartmentInvalidParent,
		service.ErrDepartmentInUse,
		service.ErrUserNameEmpty,
		service.ErrLastAdministrator,
		service.ErrCustomerInvalidField,
		service.ErrCustomerDisabled,
		service.ErrCustomerNotVIP,
		service.ErrScoreInsufficient,
		service.ErrScoreInvalid,
		service.ErrTruckInvalidField,
		service.ErrTruckDisabled,
		service.ErrWaybillStatusInvalid,
		service.ErrWaybillSrcDstSame,
		service.ErrWaybillSrcDisabled,
		service.ErrWaybillDstDisabled,
		service.ErrWaybillCargoPriceDisabled,
		service.ErrWaybillDeductionExceeds,
		service.ErrWaybillHandlingFeeMismatch,
		service.ErrWaybillIsReturn,
		service.ErrWaybillInvalidField,
		service.ErrTransportOutStatusInvalid,
		service.ErrTransportOutRouteInvalid,
		service.ErrTransportOutWaybillStatus,
		service.ErrTransportOutEmpty,
		service.ErrCargoPricePaymentStatusInvalid,
		service.ErrCargoPricePaymentWaybill,
		service.ErrCargoPricePaymentRejectReason,
		service.ErrDepartmentPaymentStatusInvalid,
		service.ErrDepartmentPaymentDateInvalid,
	}
)

func matchAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondServiceError 将服务层哨兵错误映射为响应码，未知错误按 500 处理
func respondServiceError(c *gin.Context, err error) {
	switch {
	case matchAny(err, notFoundErrors):
		respondError(c, response.CodeNotFound, err.Error(), nil)
	case matchAny(err, forbiddenErrors):
		respondError(c, response.CodeForbidden, err.Error(), nil)
	case matchAny(err, conflictErrors):
		respondError(c, response.CodeConflict, err.Error(), nil)
	case matchAny(err, badRequestErrors):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "服务器内部错误", err)
	}
}
