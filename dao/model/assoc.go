package model

// Association edges. Hard-deleted, (parent, child) unique, and for each
// parent at most one edge carries is_default=1 (enforced transactionally
// by the association service).

type ProjectSimTypeRel struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	ProjectID uint  `gorm:"uniqueIndex:uk_proj_simtype;not null;comment:项目" json:"projectId"`
	SimTypeID uint  `gorm:"uniqueIndex:uk_proj_simtype;not null;comment:仿真类型" json:"simTypeId"`
	IsDefault int8  `gorm:"not null;default:0;comment:是否默认选中" json:"isDefault"`
	Sort      int   `gorm:"not null;default:0" json:"sort"`
	CreatedAt int64 `gorm:"autoCreateTime" json:"createdAt"`
}

type SimTypeParamGroupRel struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	SimTypeID    uint  `gorm:"uniqueIndex:uk_simtype_pg;not null;comment:仿真类型" json:"simTypeId"`
	ParamGroupID uint  `gorm:"uniqueIndex:uk_simtype_pg;not null;comment:参数组" json:"paramGroupId"`
	IsDefault    int8  `gorm:"not null;default:0;comment:是否默认选中" json:"isDefault"`
	Sort         int   `gorm:"not null;default:0" json:"sort"`
	CreatedAt    int64 `gorm:"autoCreateTime" json:"createdAt"`
}

type SimTypeCondOutGroupRel struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	SimTypeID      uint  `gorm:"uniqueIndex:uk_simtype_cog;not null;comment:仿真类型" json:"simTypeId"`
	CondOutGroupID uint  `gorm:"uniqueIndex:uk_simtype_cog;not null;comment:工况输出组" json:"condOutGroupId"`
	IsDefault      int8  `gorm:"not null;default:0;comment:是否默认选中" json:"isDefault"`
	Sort           int   `gorm:"not null;default:0" json:"sort"`
	CreatedAt      int64 `gorm:"autoCreateTime" json:"createdAt"`
}

type SimTypeSolverRel struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	SimTypeID uint  `gorm:"uniqueIndex:uk_simtype_solver;not null;comment:仿真类型" json:"simTypeId"`
	SolverID  uint  `gorm:"uniqueIndex:uk_simtype_solver;not null;comment:求解器" json:"solverId"`
	IsDefault int8  `gorm:"not null;default:0;comment:是否默认选中" json:"isDefault"`
	Sort      int   `gorm:"not null;default:0" json:"sort"`
	CreatedAt int64 `gorm:"autoCreateTime" json:"createdAt"`
}
