// Package session provides session store configuration options.
package session

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Supported backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options defines configuration for the session store.
type Options struct {
	Backend       string        `json:"backend" mapstructure:"backend"`
	TTL           time.Duration `json:"ttl" mapstructure:"ttl"`
	SweepInterval time.Duration `json:"sweep-interval" mapstructure:"sweep-interval"`
	CookieName    string        `json:"cookie-name" mapstructure:"cookie-name"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Backend:       BackendMemory,
		TTL:           24 * time.Hour,
		SweepInterval: 10 * time.Minute,
		CookieName:    "calshare_session",
	}
}

// AddFlags adds session flags to the given FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Backend, "session.backend", o.Backend, "Session store backend (memory|redis)")
	fs.DurationVar(&o.TTL, "session.ttl", o.TTL, "Session time-to-live")
	fs.DurationVar(&o.SweepInterval, "session.sweep-interval", o.SweepInterval, "Expired session sweep interval (memory backend, 0 disables)")
	fs.StringVar(&o.CookieName, "session.cookie-name", o.CookieName, "Session cookie name")
}

// Validate validates the session options.
func (o *Options) Validate() error {
	switch o.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid session backend %q", o.Backend)
	}
	if o.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}
