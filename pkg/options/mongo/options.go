// Package mongo provides MongoDB configuration options for the optional
// audit sink.
package mongo

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration for MongoDB.
type Options struct {
	URI            string        `json:"-" mapstructure:"uri"` // May embed credentials.
	Database       string        `json:"database" mapstructure:"database"`
	Collection     string        `json:"collection" mapstructure:"collection"`
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
	MaxPoolSize    uint64        `json:"max-pool-size" mapstructure:"max-pool-size"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		URI:            "",
		Database:       "calshare",
		Collection:     "audit_entries",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    20,
	}
}

// AddFlags adds MongoDB flags to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.URI, "mongo.uri", o.URI, "MongoDB connection URI (empty disables the mongo audit sink)")
	fs.StringVar(&o.Database, "mongo.database", o.Database, "MongoDB database name")
	fs.StringVar(&o.Collection, "mongo.collection", o.Collection, "MongoDB audit collection name")
	fs.DurationVar(&o.ConnectTimeout, "mongo.connect-timeout", o.ConnectTimeout, "MongoDB connect timeout")
	fs.Uint64Var(&o.MaxPoolSize, "mongo.max-pool-size", o.MaxPoolSize, "MongoDB connection pool size")
}

// Enabled reports whether a MongoDB URI was configured.
func (o *Options) Enabled() bool {
	return o.URI != ""
}

// Validate validates the MongoDB options.
func (o *Options) Validate() error {
	if !o.Enabled() {
		return nil
	}
	if o.Database == "" {
		return fmt.Errorf("mongo database must not be empty")
	}
	if o.Collection == "" {
		return fmt.Errorf("mongo collection must not be empty")
	}
	return nil
}
