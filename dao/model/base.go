package model

// Base is embedded by every record: surrogate id, soft-delete flag, sort
// key and epoch-second timestamps. Delete is always soft (valid=0).
type Base struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	Valid     int8  `gorm:"not null;default:1;index;comment:是否有效 (1 有效, 0 已删除)" json:"valid"`
	Sort      int   `gorm:"not null;default:0;comment:排序号" json:"sort"`
	CreatedAt int64 `gorm:"autoCreateTime;comment:创建时间 (秒级时间戳)" json:"createdAt"`
	UpdatedAt int64 `gorm:"autoUpdateTime;comment:更新时间 (秒级时间戳)" json:"updatedAt"`
}

// BasePtr lets generic code reach the embedded Base of any model.
func (b *Base) BasePtr() *Base { return b }
