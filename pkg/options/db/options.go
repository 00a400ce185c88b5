// Package db provides relational database configuration options.
package db

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options defines configuration for the relational database.
type Options struct {
	Driver          string        `json:"driver" mapstructure:"driver"`
	DSN             string        `json:"-" mapstructure:"dsn"` // May embed credentials.
	MaxOpenConns    int           `json:"max-open-conns" mapstructure:"max-open-conns"`
	MaxIdleConns    int           `json:"max-idle-conns" mapstructure:"max-idle-conns"`
	ConnMaxLifetime time.Duration `json:"conn-max-lifetime" mapstructure:"conn-max-lifetime"`
}

// NewOptions creates Options with defaults (embedded sqlite file).
func NewOptions() *Options {
	return &Options{
		Driver:          DriverSQLite,
		DSN:             "calshare.db",
		MaxOpenConns:    50,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// AddFlags adds database flags to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Driver, "db.driver", o.Driver, "Database driver (sqlite|mysql|postgres)")
	fs.StringVar(&o.DSN, "db.dsn", o.DSN, "Database DSN (file path for sqlite)")
	fs.IntVar(&o.MaxOpenConns, "db.max-open-conns", o.MaxOpenConns, "Maximum open connections")
	fs.IntVar(&o.MaxIdleConns, "db.max-idle-conns", o.MaxIdleConns, "Maximum idle connections")
	fs.DurationVar(&o.ConnMaxLifetime, "db.conn-max-lifetime", o.ConnMaxLifetime, "Connection max lifetime")
}

// Validate validates the database options.
func (o *Options) Validate() error {
	switch o.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("invalid db driver %q", o.Driver)
	}
	if o.DSN == "" {
		return fmt.Errorf("db dsn must not be empty")
	}
	return nil
}

// String returns a loggable representation without the DSN.
func (o *Options) String() string {
	return fmt.Sprintf("DB{driver=%s, max-open=%d}", o.Driver, o.MaxOpenConns)
}
