package model

import (
	"gorm.io/datatypes"
)

// OriginFile references the structural model the order runs against.
type OriginFile struct {
	Type   OriginFileType `json:"type"`
	Name   string         `json:"name,omitempty"`
	Path   string         `json:"path,omitempty"`
	FileID string         `json:"fileId,omitempty"`
}

// Order records a submitted simulation order. Rows are hard-deleted and
// only while status is pending; results cascade with the order.
type Order struct {
	Base
	OrderNo         string                          `gorm:"uniqueIndex;type:varchar(32);not null;comment:订单号 ORD-YYYYMMDD-NNNNN" json:"orderNo"`
	ProjectID       uint                            `gorm:"index;not null;comment:所属项目" json:"projectId"`
	OriginFile      datatypes.JSONType[OriginFile]  `gorm:"comment:模型文件引用 (路径/文件ID/上传)" json:"originFile"`
	FoldTypeID      *uint                           `gorm:"comment:折叠/姿态类型" json:"foldTypeId"`
	ParticipantUids datatypes.JSONSlice[uint]       `gorm:"comment:参与人" json:"participantUids"`
	Remark          string                          `gorm:"type:varchar(512);comment:备注" json:"remark"`
	SimTypeIDs      datatypes.JSONSlice[uint]       `gorm:"comment:选中的仿真类型" json:"simTypeIds"`
	OptParam        datatypes.JSON                  `gorm:"comment:按仿真类型键控的选项包, 原样存储" json:"optParam"`
	WorkflowID      *uint                           `gorm:"comment:流程" json:"workflowId"`
	SubmitCheck     datatypes.JSON                  `gorm:"comment:提交检查快照" json:"submitCheck"`
	ClientMeta      datatypes.JSON                  `gorm:"comment:客户端元信息" json:"clientMeta"`
	Status          OrderStatus                     `gorm:"index;not null;default:1;comment:订单状态 (1 待执行 .. 5 失败)" json:"status"`
	Progress        int                             `gorm:"not null;default:0;comment:进度 0-100" json:"progress"`
	CurNodeID       *string                         `gorm:"type:varchar(64);comment:当前流程节点" json:"curNodeId"`
	CreatedBy       uint                            `gorm:"index;not null;comment:提交人" json:"createdBy"`
}
