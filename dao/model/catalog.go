package model

import (
	"gorm.io/datatypes"
)

// Catalog atoms. Code (key for ParamDef) is unique among valid=1 rows;
// enforced in the service layer so a soft-deleted code can be reused.

type Project struct {
	Base
	Name             string `gorm:"type:varchar(128);not null;comment:项目名称" json:"name"`
	Code             string `gorm:"index;type:varchar(64);not null;comment:项目编码" json:"code"`
	DefaultSimTypeID *uint  `gorm:"comment:默认仿真类型" json:"defaultSimTypeId"`
	DefaultSolverID  *uint  `gorm:"comment:默认求解器" json:"defaultSolverId"`
	Remark           string `gorm:"type:varchar(512);comment:备注" json:"remark"`
}

type SimType struct {
	Base
	Name           string `gorm:"type:varchar(128);not null;comment:仿真类型名称" json:"name"`
	Code           string `gorm:"index;type:varchar(64);not null;comment:仿真类型编码" json:"code"`
	Category       string `gorm:"type:varchar(64);comment:仿真类型分类" json:"category"`
	SupportAlgMask int    `gorm:"not null;default:0;comment:支持的算法位掩码 (bit0 DOE, bit1 Bayes)" json:"supportAlgMask"`
	Icon           string `gorm:"type:varchar(256);comment:图标" json:"icon"`
	Description    string `gorm:"type:varchar(512);comment:描述" json:"description"`
}

type ParamDef struct {
	Base
	Name        string         `gorm:"type:varchar(128);not null;comment:参数名称" json:"name"`
	Key         string         `gorm:"index;type:varchar(64);not null;comment:参数键" json:"key"`
	ValType     ValType        `gorm:"type:varchar(16);not null;comment:取值类型 (number, int, string, enum)" json:"valType"`
	Unit        string         `gorm:"type:varchar(32);comment:单位" json:"unit"`
	Min         *float64       `gorm:"comment:最小值" json:"min"`
	Max         *float64       `gorm:"comment:最大值" json:"max"`
	Precision   *int           `gorm:"comment:精度" json:"precision"`
	DefaultVal  *string        `gorm:"type:varchar(256);comment:默认值" json:"defaultVal"`
	EnumOptions datatypes.JSON `gorm:"comment:枚举选项" json:"enumOptions"`
	Required    bool           `gorm:"not null;default:false;comment:是否必填" json:"required"`
}

type ConditionDef struct {
	Base
	Name            string         `gorm:"type:varchar(128);not null;comment:工况名称" json:"name"`
	Code            string         `gorm:"index;type:varchar(64);not null;comment:工况编码" json:"code"`
	Category        string         `gorm:"type:varchar(64);comment:工况分类" json:"category"`
	Unit            string         `gorm:"type:varchar(32);comment:单位" json:"unit"`
	ConditionSchema datatypes.JSON `gorm:"comment:工况配置结构 (自由格式)" json:"conditionSchema"`
}

type OutputDef struct {
	Base
	Name    string  `gorm:"type:varchar(128);not null;comment:输出项名称" json:"name"`
	Code    string  `gorm:"index;type:varchar(64);not null;comment:输出项编码" json:"code"`
	ValType ValType `gorm:"type:varchar(16);comment:取值类型" json:"valType"`
	Unit    string  `gorm:"type:varchar(32);comment:单位" json:"unit"`
}

type Solver struct {
	Base
	Name           string         `gorm:"type:varchar(128);not null;comment:求解器名称" json:"name"`
	Code           string         `gorm:"index;type:varchar(64);not null;comment:求解器编码" json:"code"`
	Version        string         `gorm:"type:varchar(32);comment:版本" json:"version"`
	CPUCoreMin     int            `gorm:"not null;default:1;comment:CPU 核数下限" json:"cpuCoreMin"`
	CPUCoreMax     int            `gorm:"not null;default:1;comment:CPU 核数上限" json:"cpuCoreMax"`
	CPUCoreDefault int            `gorm:"not null;default:1;comment:CPU 核数默认值" json:"cpuCoreDefault"`
	MemoryMin      int            `gorm:"not null;default:1;comment:内存下限 (Gi)" json:"memoryMin"`
	MemoryMax      int            `gorm:"not null;default:1;comment:内存上限 (Gi)" json:"memoryMax"`
	MemoryDefault  int            `gorm:"not null;default:1;comment:内存默认值 (Gi)" json:"memoryDefault"`
	ParamsSchema   datatypes.JSON `gorm:"comment:求解器参数结构 (自由格式)" json:"paramsSchema"`
}

type FoldType struct {
	Base
	Name  string  `gorm:"type:varchar(128);not null;comment:折叠/姿态名称" json:"name"`
	Code  string  `gorm:"index;type:varchar(64);not null;comment:折叠/姿态编码" json:"code"`
	Angle float64 `gorm:"not null;default:0;comment:折叠角度" json:"angle"`
}

type StatusDef struct {
	Base
	Name  string     `gorm:"type:varchar(128);not null;comment:状态名称" json:"name"`
	Code  string     `gorm:"index;type:varchar(64);not null;comment:状态编码" json:"code"`
	Type  StatusKind `gorm:"type:varchar(16);not null;comment:状态类型 (PROCESS, FINAL)" json:"type"`
	Color string     `gorm:"type:varchar(32);comment:颜色" json:"color"`
	Icon  string     `gorm:"type:varchar(256);comment:图标" json:"icon"`
}

type Workflow struct {
	Base
	Name  string         `gorm:"type:varchar(128);not null;comment:流程名称" json:"name"`
	Code  string         `gorm:"index;type:varchar(64);not null;comment:流程编码" json:"code"`
	Type  WorkflowType   `gorm:"type:varchar(16);not null;comment:流程类型 (ORDER, SIM_TYPE, ROUND)" json:"type"`
	Nodes datatypes.JSON `gorm:"comment:流程节点" json:"nodes"`
	Edges datatypes.JSON `gorm:"comment:流程连线" json:"edges"`
}

type AutomationModule struct {
	Base
	Name    string `gorm:"type:varchar(128);not null;comment:自动化模块名称" json:"name"`
	Code    string `gorm:"index;type:varchar(64);not null;comment:自动化模块编码" json:"code"`
	Version string `gorm:"type:varchar(32);comment:版本" json:"version"`
	Remark  string `gorm:"type:varchar(512);comment:备注" json:"remark"`
}

type ModelLevel struct {
	Base
	Name  string `gorm:"type:varchar(128);not null;comment:模型级别名称" json:"name"`
	Code  string `gorm:"index;type:varchar(64);not null;comment:模型级别编码" json:"code"`
	Level int    `gorm:"not null;default:0;comment:级别序号" json:"level"`
}

type CareDevice struct {
	Base
	Name       string `gorm:"type:varchar(128);not null;comment:关注器件名称" json:"name"`
	Code       string `gorm:"index;type:varchar(64);not null;comment:关注器件编码" json:"code"`
	DeviceType string `gorm:"type:varchar(64);comment:器件类型" json:"deviceType"`
}

type SolverResource struct {
	Base
	Name    string `gorm:"type:varchar(128);not null;comment:求解资源名称" json:"name"`
	Code    string `gorm:"index;type:varchar(64);not null;comment:求解资源编码" json:"code"`
	CPUCore int    `gorm:"not null;default:0;comment:CPU 核数" json:"cpuCore"`
	Memory  int    `gorm:"not null;default:0;comment:内存 (Gi)" json:"memory"`
}

type Department struct {
	Base
	Name     string `gorm:"type:varchar(128);not null;comment:部门名称" json:"name"`
	Code     string `gorm:"index;type:varchar(64);not null;comment:部门编码" json:"code"`
	ParentID uint   `gorm:"not null;default:0;comment:上级部门, 0 表示根" json:"parentId"`
}
