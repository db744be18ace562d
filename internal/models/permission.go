package models

// PermissionGroup 权限分组（树形结构）
type PermissionGroup struct {
	ID        uint   `gorm:"primarykey" json:"id"`                               // 主键
	Name      string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // 分组标识
	PrintName string `gorm:"type:varchar(100);not null" json:"print_name"`       // 显示名称
	ParentID  *uint  `gorm:"index" json:"parent_id,omitempty"`                   // 上级分组ID

	Parent *PermissionGroup `gorm:"foreignKey:ParentID" json:"parent,omitempty"` // 上级分组
}

// TableName 指定表名
func (PermissionGroup) TableName() string {
	return "permission_groups"
}

// Permission 权限项，权限名在每个受限操作前被校验
type Permission struct {
	ID        uint   `gorm:"primarykey" json:"id"`                               // 主键
	Name      string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // 权限标识
	PrintName string `gorm:"type:varchar(100);not null" json:"print_name"`       // 显示名称
	GroupID   *uint  `gorm:"index" json:"group_id,omitempty"`                    // 所属分组ID

	Group *PermissionGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"` // 所属分组
}

// TableName 指定表名
func (Permission) TableName() string {
	return "permissions"
}
