package model

import (
	"gorm.io/datatypes"
)

// ParamGroup is a reusable, ordered bundle of parameter definitions with
// per-bundle default overrides. Name is unique among valid groups.
type ParamGroup struct {
	Base
	Name        string `gorm:"index;type:varchar(128);not null;comment:参数组名称" json:"name"`
	Description string `gorm:"type:varchar(512);comment:描述" json:"description"`
}

type ParamGroupParamRel struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	ParamGroupID uint    `gorm:"uniqueIndex:uk_pg_param;not null;comment:参数组" json:"paramGroupId"`
	ParamDefID   uint    `gorm:"uniqueIndex:uk_pg_param;not null;comment:参数定义" json:"paramDefId"`
	DefaultValue *string `gorm:"type:varchar(256);comment:组内默认值, 覆盖参数自身默认值" json:"defaultValue"`
	Sort         int     `gorm:"not null;default:0;comment:组内排序" json:"sort"`
	CreatedAt    int64   `gorm:"autoCreateTime" json:"createdAt"`
}

// CondOutGroup bundles an ordered condition list (with per-instance
// overrides) and an ordered output list.
type CondOutGroup struct {
	Base
	Name        string `gorm:"index;type:varchar(128);not null;comment:工况输出组名称" json:"name"`
	Description string `gorm:"type:varchar(512);comment:描述" json:"description"`
}

type CondOutGroupConditionRel struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CondOutGroupID uint           `gorm:"uniqueIndex:uk_cog_cond;not null;comment:工况输出组" json:"condOutGroupId"`
	ConditionDefID uint           `gorm:"uniqueIndex:uk_cog_cond;not null;comment:工况定义" json:"conditionDefId"`
	ConfigData     datatypes.JSON `gorm:"comment:组内工况覆盖配置 (自由格式)" json:"configData"`
	Sort           int            `gorm:"not null;default:0;comment:组内排序" json:"sort"`
	CreatedAt      int64          `gorm:"autoCreateTime" json:"createdAt"`
}

type CondOutGroupOutputRel struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	CondOutGroupID uint  `gorm:"uniqueIndex:uk_cog_out;not null;comment:工况输出组" json:"condOutGroupId"`
	OutputDefID    uint  `gorm:"uniqueIndex:uk_cog_out;not null;comment:输出定义" json:"outputDefId"`
	Sort           int   `gorm:"not null;default:0;comment:组内排序" json:"sort"`
	CreatedAt      int64 `gorm:"autoCreateTime" json:"createdAt"`
}
