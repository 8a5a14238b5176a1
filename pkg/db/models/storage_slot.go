package models

import "time"

// StorageSlot persists one serialized slot (cart, wishlist) of a shopper session.
type StorageSlot struct {
	SessionID string    `gorm:"column:session_id;primaryKey;size:128"`
	Slot      string    `gorm:"column:slot;primaryKey;size:32"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StorageSlot) TableName() string {
	return "storage_slots"
}
