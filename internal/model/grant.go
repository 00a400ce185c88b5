package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"github.com/kart-io/calshare/pkg/permission"
)

// PermissionList stores a permission set as a JSON column.
type PermissionList []permission.Permission

// Value implements driver.Valuer.
func (l PermissionList) Value() (driver.Value, error) {
	if l == nil {
		l = PermissionList{}
	}
	data, err := sonic.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal permission list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *PermissionList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return sonic.Unmarshal(v, l)
	case string:
		return sonic.UnmarshalString(v, l)
	default:
		return fmt.Errorf("unsupported permission list source type %T", src)
	}
}

// PermissionGrant associates a permission set with a (user, calendar)
// pair. At most one authoritative grant exists per pair in normal
// operation; the evaluator tolerates duplicates by unioning their sets.
type PermissionGrant struct {
	ID          string         `json:"id" gorm:"primaryKey;size:26"`
	UserID      string         `json:"user_id" gorm:"size:26;index:idx_grant_user;not null"`
	CalendarID  string         `json:"calendar_id" gorm:"size:26;index:idx_grant_calendar;not null"`
	Permissions PermissionList `json:"permissions" gorm:"type:text"`
	GrantedBy   string         `json:"granted_by" gorm:"size:26"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
}

// TableName returns the table name for GORM.
func (g *PermissionGrant) TableName() string {
	return "permission_grants"
}

// BeforeCreate sets the timestamp fields.
func (g *PermissionGrant) BeforeCreate(_ *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	g.CreatedAt = now
	g.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (g *PermissionGrant) BeforeUpdate(_ *gorm.DB) (err error) {
	g.UpdatedAt = time.Now().UnixMilli()
	return
}

// AccessLevel is the presentational roll-up of a permission set.
type AccessLevel string

// Access levels from most to least capable.
const (
	AccessManager     AccessLevel = "manager"
	AccessContributor AccessLevel = "contributor"
	AccessCommenter   AccessLevel = "commenter"
	AccessViewer      AccessLevel = "viewer"
	AccessTimesOnly   AccessLevel = "times-only"
	AccessNone        AccessLevel = "none"
)

// AccessLevelFor derives the display access level from a permission set.
// Display only; enforcement always goes through the evaluator.
func AccessLevelFor(perms []permission.Permission) AccessLevel {
	has := make(map[permission.Permission]bool, len(perms))
	for _, p := range perms {
		has[p] = true
	}

	switch {
	case has[permission.ManageCalendar]:
		return AccessManager
	case has[permission.AddToCalendar]:
		return AccessContributor
	case has[permission.CommentOnCalendar]:
		return AccessCommenter
	case has[permission.ViewCalendar]:
		return AccessViewer
	case has[permission.ViewCalendarTimesOnly]:
		return AccessTimesOnly
	default:
		return AccessNone
	}
}
