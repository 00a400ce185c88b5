package model

import (
	"time"

	"gorm.io/gorm"
)

// Event is a calendar entry.
type Event struct {
	ID          string         `json:"id" gorm:"primaryKey;size:26"`
	CalendarID  string         `json:"calendar_id" gorm:"size:26;index:idx_event_calendar;not null"`
	Title       string         `json:"title" gorm:"size:256;not null"`
	Description string         `json:"description" gorm:"size:2048"`
	Location    string         `json:"location" gorm:"size:256"`
	StartsAt    int64          `json:"starts_at" gorm:"index:idx_event_starts;not null"`
	EndsAt      int64          `json:"ends_at" gorm:"not null"`
	AllDay      bool           `json:"all_day" gorm:"default:false"`
	CreatedBy   string         `json:"created_by" gorm:"size:26"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (e *Event) TableName() string {
	return "events"
}

// BeforeCreate sets the timestamp fields.
func (e *Event) BeforeCreate(_ *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	e.CreatedAt = now
	e.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (e *Event) BeforeUpdate(_ *gorm.DB) (err error) {
	e.UpdatedAt = time.Now().UnixMilli()
	return
}

// TimesOnly returns a copy stripped to scheduling fields, for viewers
// holding only the times-only permission.
func (e *Event) TimesOnly() *Event {
	return &Event{
		ID:         e.ID,
		CalendarID: e.CalendarID,
		Title:      "Busy",
		StartsAt:   e.StartsAt,
		EndsAt:     e.EndsAt,
		AllDay:     e.AllDay,
	}
}

// EventComment is a comment on an event.
type EventComment struct {
	ID        string `json:"id" gorm:"primaryKey;size:26"`
	EventID   string `json:"event_id" gorm:"size:26;index:idx_comment_event;not null"`
	AuthorID  string `json:"author_id" gorm:"size:26;not null"`
	Body      string `json:"body" gorm:"size:2048;not null"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime:milli"`
}

// TableName returns the table name for GORM.
func (c *EventComment) TableName() string {
	return "event_comments"
}

// BeforeCreate sets the CreatedAt field.
func (c *EventComment) BeforeCreate(_ *gorm.DB) (err error) {
	c.CreatedAt = time.Now().UnixMilli()
	return
}

// EventList contains a page of events and the total count.
type EventList struct {
	TotalCount int64    `json:"totalCount"`
	Items      []*Event `json:"items"`
}
