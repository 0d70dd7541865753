package model

import (
	"gorm.io/datatypes"
)

// SimTypeResult tracks one sim type's execution inside an order. Created
// pending at submit time; mutated only by the execution pipeline.
type SimTypeResult struct {
	Base
	OrderID         uint           `gorm:"index:idx_order_simtype;not null;comment:订单" json:"orderId"`
	SimTypeID       uint           `gorm:"index:idx_order_simtype;not null;comment:仿真类型" json:"simTypeId"`
	Status          OrderStatus    `gorm:"index;not null;default:1;comment:执行状态" json:"status"`
	Progress        int            `gorm:"not null;default:0;comment:进度 0-100" json:"progress"`
	CurNodeID       *string        `gorm:"type:varchar(64);comment:当前流程节点" json:"curNodeId"`
	StuckNodeID     *string        `gorm:"type:varchar(64);comment:卡住的流程节点" json:"stuckNodeId"`
	StuckModuleID   *uint          `gorm:"comment:卡住的自动化模块" json:"stuckModuleId"`
	BestExists      int8           `gorm:"not null;default:0;comment:是否存在最优轮次" json:"bestExists"`
	BestRuleID      *uint          `gorm:"comment:最优判定规则" json:"bestRuleId"`
	BestRoundIndex  *int           `gorm:"comment:最优轮次序号" json:"bestRoundIndex"`
	BestMetrics     datatypes.JSON `gorm:"comment:最优轮次指标" json:"bestMetrics"`
	TotalRounds     int            `gorm:"not null;default:0;comment:总轮次数" json:"totalRounds"`
	CompletedRounds int            `gorm:"not null;default:0;comment:完成轮次数" json:"completedRounds"`
	FailedRounds    int            `gorm:"not null;default:0;comment:失败轮次数" json:"failedRounds"`
}

// Round is one realized execution, unique per (simTypeResultId, roundIndex).
type Round struct {
	Base
	SimTypeResultID  uint           `gorm:"uniqueIndex:uk_result_round;not null;comment:所属仿真类型结果" json:"simTypeResultId"`
	RoundIndex       int            `gorm:"uniqueIndex:uk_result_round;not null;comment:轮次序号, 从 1 开始" json:"roundIndex"`
	OrderID          uint           `gorm:"index:idx_round_order_simtype;not null;comment:订单" json:"orderId"`
	SimTypeID        uint           `gorm:"index:idx_round_order_simtype;not null;comment:仿真类型" json:"simTypeId"`
	Params           datatypes.JSON `gorm:"comment:本轮输入参数" json:"params"`
	Outputs          datatypes.JSON `gorm:"comment:本轮输出" json:"outputs"`
	Status           OrderStatus    `gorm:"index;not null;default:1;comment:轮次状态" json:"status"`
	FlowCurNodeID    *string        `gorm:"type:varchar(64);comment:当前流程节点" json:"flowCurNodeId"`
	FlowNodeProgress datatypes.JSON `gorm:"comment:各流程节点进度" json:"flowNodeProgress"`
	StuckModuleID    *uint          `gorm:"comment:卡住的自动化模块" json:"stuckModuleId"`
	ErrorCode        *string        `gorm:"type:varchar(64);comment:错误码" json:"errorCode"`
	ErrorMsg         *string        `gorm:"type:text;comment:错误信息" json:"errorMsg"`
	StartedAt        *int64         `gorm:"comment:开始时间 (秒级时间戳)" json:"startedAt"`
	FinishedAt       *int64         `gorm:"comment:结束时间 (秒级时间戳)" json:"finishedAt"`
}
