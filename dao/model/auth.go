package model

import (
	"gorm.io/datatypes"
)

// User is the basic entity of the system
type User struct {
	Base
	Username    string                    `gorm:"uniqueIndex;type:varchar(64);not null;comment:用户名" json:"username"`
	Email       string                    `gorm:"uniqueIndex;type:varchar(128);not null;comment:邮箱" json:"email"`
	Name        string                    `gorm:"type:varchar(64);comment:姓名" json:"name"`
	Password    *string                   `gorm:"type:varchar(256);comment:密码哈希" json:"-"`
	RoleIDs     datatypes.JSONSlice[uint] `gorm:"comment:角色" json:"roleIds"`
	Preferences datatypes.JSON            `gorm:"comment:用户偏好设置" json:"preferences"`
	LastLoginAt int64                     `gorm:"not null;default:0;comment:上次登录时间 (秒级时间戳)" json:"lastLoginAt"`
}

type Role struct {
	Base
	Name          string                    `gorm:"type:varchar(64);not null;comment:角色名称" json:"name"`
	Code          string                    `gorm:"index;type:varchar(64);not null;comment:角色编码" json:"code"`
	PermissionIDs datatypes.JSONSlice[uint] `gorm:"comment:权限" json:"permissionIds"`
}

type Permission struct {
	Base
	Name     string         `gorm:"type:varchar(64);not null;comment:权限名称" json:"name"`
	Code     string         `gorm:"index;type:varchar(64);not null;comment:权限编码" json:"code"`
	Type     PermissionType `gorm:"type:varchar(16);not null;comment:权限类型 (PAGE, ACTION, DATA)" json:"type"`
	Resource string         `gorm:"type:varchar(128);comment:资源标识" json:"resource"`
}

type Menu struct {
	Base
	ParentID       uint     `gorm:"index;not null;default:0;comment:父菜单, 0 表示根" json:"parentId"`
	Name           string   `gorm:"type:varchar(64);not null;comment:菜单名称" json:"name"`
	TitleI18nKey   string   `gorm:"type:varchar(128);comment:标题国际化键" json:"titleI18nKey"`
	Icon           string   `gorm:"type:varchar(256);comment:图标" json:"icon"`
	Path           string   `gorm:"type:varchar(256);comment:路由路径" json:"path"`
	Component      string   `gorm:"type:varchar(256);comment:前端组件" json:"component"`
	Hidden         bool     `gorm:"not null;default:false;comment:是否隐藏" json:"hidden"`
	MenuType       MenuType `gorm:"type:varchar(16);not null;default:MENU;comment:菜单类型 (MENU, BUTTON)" json:"menuType"`
	PermissionCode *string  `gorm:"type:varchar(64);comment:可见所需权限编码, 空表示不限" json:"permissionCode"`
}
