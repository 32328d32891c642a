package models

import "time"

// BaseModel defines the common fields for relationship and movie night rows.
// No soft-delete column: unfollow, cancel and unfriend are hard deletes, and
// a soft-deleted row would keep occupying the unique pair indexes.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
