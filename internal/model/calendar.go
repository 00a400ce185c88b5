package model

import (
	"time"

	"gorm.io/gorm"
)

// Calendar is a shareable collection of events owned by a user, optionally
// scoped to an organization.
type Calendar struct {
	ID          string         `json:"id" gorm:"primaryKey;size:26"`
	Name        string         `json:"name" gorm:"size:128;not null"`
	Description string         `json:"description" gorm:"size:512"`
	Color       string         `json:"color" gorm:"size:16"`
	OwnerID     string         `json:"owner_id" gorm:"size:26;index:idx_calendar_owner;not null"`
	OrgID       *string        `json:"org_id" gorm:"size:26;index:idx_calendar_org"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (c *Calendar) TableName() string {
	return "calendars"
}

// BeforeCreate sets the timestamp fields.
func (c *Calendar) BeforeCreate(_ *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	c.CreatedAt = now
	c.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (c *Calendar) BeforeUpdate(_ *gorm.DB) (err error) {
	c.UpdatedAt = time.Now().UnixMilli()
	return
}

// CalendarList contains a page of calendars and the total count.
type CalendarList struct {
	TotalCount int64       `json:"totalCount"`
	Items      []*Calendar `json:"items"`
}
