package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wuliu-next/internal/cache"
	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/models"
	"github.com/wuliu-next/internal/repository"
)

const (
	settingCacheKey = "setting"
	settingCacheTTL = 3 * time.Hour
)

// SettingService 全局设置服务
type SettingService struct {
	settingRepo repository.SettingRepository
	cache       *cache.ExpireCache
}

// NewSettingService 创建设置服务
func NewSettingService(settingRepo repository.SettingRepository) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		cache:       cache.NewExpireCache(settingCacheTTL),
	}
}

// EnsureDefaults 确保设置行存在，不存在时按默认值创建
func (s *SettingService) EnsureDefaults() (*models.Setting, error) {
	setting, err := s.settingRepo.Get()
	if err != nil {
		return nil, err
	}
	if setting != nil {
		return setting, nil
	}
	handlingRatio, err := decimal.NewFromString(constants.DefaultHandlingFeeRatio)
	if err != nil {
		return nil, err
	}
	scoreRatio, err := decimal.NewFromString(constants.DefaultCustomerScoreRatio)
	if err != nil {
		return nil, err
	}
	setting = &models.Setting{
		CompanyName:        constants.DefaultCompanyName,
		HandlingFeeRatio:   handlingRatio,
		CustomerScoreRatio: scoreRatio,
	}
	if err := s.settingRepo.Create(setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// Get 获取全局设置（缓存 3 小时）
func (s *SettingService) Get() (*models.Setting, error) {
	if v, ok := s.cache.Get(settingCacheKey); ok {
		if setting, ok := v.(*models.Setting); ok {
			return setting, nil
		}
	}
	setting, err := s.EnsureDefaults()
	if err != nil {
		return nil, err
	}
	s.cache.Set(settingCacheKey, setting)
	return setting, nil
}

// Update 更新全局设置，保持单行约束
func (s *SettingService) Update(companyName string, handlingFeeRatio, customerScoreRatio decimal.Decimal) (*models.Setting, error) {
	if companyName == "" {
		return nil, ErrSettingNameEmpty
	}
	if !validRatio(handlingFeeRatio) || !validRatio(customerScoreRatio) {
		return nil, ErrSettingInvalidRatio
	}
	setting, err := s.EnsureDefaults()
	if err != nil {
		return nil, err
	}
	count, err := s.settingRepo.Count()
	if err != nil {
		return nil, err
	}
	if count > 1 {
		return nil, ErrSettingDuplicate
	}
	setting.CompanyName = companyName
	setting.HandlingFeeRatio = handlingFeeRatio
	setting.CustomerScoreRatio = customerScoreRatio
	if err := s.settingRepo.Update(setting); err != nil {
		return nil, err
	}
	s.cache.Delete(settingCacheKey)
	return setting, nil
}

// validRatio 比例必须落在 (0,1] 区间
func validRatio(ratio decimal.Decimal) bool {
	return ratio.IsPositive() && ratio.LessThanOrEqual(decimal.NewFromInt(1))
}
