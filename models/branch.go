package models

import "time"

// Branch is a tenant institution. Billing contracts and health scores are
// keyed by branch id; everything financial inside a branch is scoped to it.
type Branch struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Code      string    `gorm:"size:64;uniqueIndex" json:"code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
