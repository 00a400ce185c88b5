// Package audit provides audit service configuration options.
package audit

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options defines configuration for the audit service.
type Options struct {
	// Workers sizes the pool that persists entries to the backing store.
	Workers int `json:"workers" mapstructure:"workers"`

	// PersistToDB mirrors audit entries into the relational store in
	// addition to the in-memory log.
	PersistToDB bool `json:"persist-to-db" mapstructure:"persist-to-db"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Workers:     4,
		PersistToDB: true,
	}
}

// AddFlags adds audit flags to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Workers, "audit.workers", o.Workers, "Audit persistence worker pool size")
	fs.BoolVar(&o.PersistToDB, "audit.persist-to-db", o.PersistToDB, "Persist audit entries to the relational store")
}

// Validate validates the audit options.
func (o *Options) Validate() error {
	if o.Workers <= 0 {
		return fmt.Errorf("audit workers must be positive")
	}
	return nil
}
