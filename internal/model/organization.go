package model

import (
	"time"

	"gorm.io/gorm"
)

// Organization groups users and calendars under a shared namespace.
type Organization struct {
	ID          string         `json:"id" gorm:"primaryKey;size:26"`
	Name        string         `json:"name" gorm:"size:128;not null"`
	Slug        string         `json:"slug" gorm:"size:64;not null;uniqueIndex:uk_org_slug"`
	Description string         `json:"description" gorm:"size:512"`
	OwnerID     string         `json:"owner_id" gorm:"size:26;index:idx_org_owner;not null"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (o *Organization) TableName() string {
	return "organizations"
}

// BeforeCreate sets the timestamp fields.
func (o *Organization) BeforeCreate(_ *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	o.CreatedAt = now
	o.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (o *Organization) BeforeUpdate(_ *gorm.DB) (err error) {
	o.UpdatedAt = time.Now().UnixMilli()
	return
}

// OrgMember links a user to an organization.
type OrgMember struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	OrgID     string `json:"org_id" gorm:"size:26;uniqueIndex:uk_org_member;index:idx_member_org;not null"`
	UserID    string `json:"user_id" gorm:"size:26;uniqueIndex:uk_org_member;index:idx_member_user;not null"`
	Role      string `json:"role" gorm:"size:32;default:member"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime:milli"`
}

// TableName returns the table name for GORM.
func (m *OrgMember) TableName() string {
	return "org_members"
}

// BeforeCreate sets the CreatedAt field.
func (m *OrgMember) BeforeCreate(_ *gorm.DB) (err error) {
	m.CreatedAt = time.Now().UnixMilli()
	return
}
