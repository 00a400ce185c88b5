// Package model defines the persisted data models for calshare.
package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the system.
type User struct {
	ID          string         `json:"id" gorm:"primaryKey;size:26"`
	Username    string         `json:"username" gorm:"size:64;not null;uniqueIndex:uk_username"`
	Email       *string        `json:"email" gorm:"size:128;uniqueIndex:uk_email"`
	Password    string         `json:"-" gorm:"size:255;not null"`
	DisplayName string         `json:"display_name" gorm:"size:128"`
	Status      int            `json:"status" gorm:"default:1;index:idx_user_status"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (u *User) TableName() string {
	return "users"
}

// BeforeCreate sets the timestamp fields.
func (u *User) BeforeCreate(_ *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	u.CreatedAt = now
	u.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (u *User) BeforeUpdate(_ *gorm.DB) (err error) {
	u.UpdatedAt = time.Now().UnixMilli()
	return
}

// UserList contains a page of users and the total count.
type UserList struct {
	TotalCount int64   `json:"totalCount"`
	Items      []*User `json:"items"`
}
