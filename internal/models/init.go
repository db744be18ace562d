package models

import (
	"github.com/wuliu-next/internal/constants"
	"github.com/wuliu-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitPermissions 初始化权限表，补齐缺失的权限项
func InitPermissions() error {
	for name, printName := range constants.PermissionNames {
		var count int64
		if err := DB.Model(&Permission{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&Permission{Name: name, PrintName: printName}).Error; err != nil {
			return err
		}
	}
	return nil
}

// InitDefaultAdmin 初始化默认管理员账号
// 管理员必须挂在某个部门下，部门不存在时一并创建总公司部门
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&User{}).Where("is_administrator = ?", true).Count(&count)
	if count > 0 {
		return nil
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var dept Department
	if err := DB.Where("name = ?", "总公司").First(&dept).Error; err != nil {
		dept = Department{Name: "总公司"}
		if err := DB.Create(&dept).Error; err != nil {
			return err
		}
	}

	admin := User{
		Name:            username,
		PasswordHash:    string(hash),
		Enabled:         true,
		IsAdministrator: true,
		DepartmentID:    dept.ID,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username, "password", password)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}
