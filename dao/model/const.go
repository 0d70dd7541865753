package model

// Order status
type OrderStatus uint8

const (
	_              OrderStatus = iota
	OrderPending               // 待执行，唯一允许删除的状态
	OrderQueued                // 已排队
	OrderRunning               // 执行中
	OrderSucceeded             // 已完成
	OrderFailed                // 已失败
)

// Parameter / output value type
type ValType string

const (
	ValTypeNumber ValType = "number"
	ValTypeInt    ValType = "int"
	ValTypeString ValType = "string"
	ValTypeEnum   ValType = "enum"
)

// Status definition kind
type StatusKind string

const (
	StatusKindProcess StatusKind = "PROCESS"
	StatusKindFinal   StatusKind = "FINAL"
)

// Workflow scope
type WorkflowType string

const (
	WorkflowTypeOrder   WorkflowType = "ORDER"
	WorkflowTypeSimType WorkflowType = "SIM_TYPE"
	WorkflowTypeRound   WorkflowType = "ROUND"
)

// Permission kind
type PermissionType string

const (
	PermissionTypePage   PermissionType = "PAGE"
	PermissionTypeAction PermissionType = "ACTION"
	PermissionTypeData   PermissionType = "DATA"
)

// Menu kind (only MENU entries participate in the navigation tree)
type MenuType string

const (
	MenuTypeMenu   MenuType = "MENU"
	MenuTypeButton MenuType = "BUTTON"
)

// Analysis chart kind, echoed back unchanged.
type ChartType string

const (
	ChartScatter ChartType = "SCATTER"
	ChartLine    ChartType = "LINE"
	ChartBar     ChartType = "BAR"
	ChartHist3D  ChartType = "HIST3D"
)

// Origin file reference kind
type OriginFileType uint8

const (
	_                  OriginFileType = iota
	OriginFilePath                    // 服务器路径
	OriginFileByID                    // 文件服务 ID
	OriginFileUploaded                // 随单上传
)

// SimType.supportAlgMask bits
const (
	AlgMaskDOE   = 1 << 0
	AlgMaskBayes = 1 << 1
)

// RoleCodeAdmin grants every active permission.
const RoleCodeAdmin = "ADMIN"

// PermConfigManage guards the catalog administration surface.
const PermConfigManage = "config:manage"

const InvalidUserID = 0
