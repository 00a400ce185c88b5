package store

import (
	"gorm.io/gorm"

	"github.com/kart-io/calshare/internal/model"
)

// datastore implements Factory over a GORM connection.
type datastore struct {
	db *gorm.DB
}

// NewFactory creates the GORM-backed store factory.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Users returns the user store.
func (ds *datastore) Users() UserStore {
	return newUsers(ds.db)
}

// Organizations returns the organization store.
func (ds *datastore) Organizations() OrganizationStore {
	return newOrganizations(ds.db)
}

// Calendars returns the calendar store.
func (ds *datastore) Calendars() CalendarStore {
	return newCalendars(ds.db)
}

// Events returns the event store.
func (ds *datastore) Events() EventStore {
	return newEvents(ds.db)
}

// Grants returns the permission grant store.
func (ds *datastore) Grants() GrantStore {
	return newGrants(ds.db)
}

// Audits returns the audit persistence sink.
func (ds *datastore) Audits() AuditStore {
	return newAudits(ds.db)
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.OrgMember{},
		&model.Calendar{},
		&model.Event{},
		&model.EventComment{},
		&model.PermissionGrant{},
		&auditRecord{},
	)
}

// Close closes the underlying connection.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
