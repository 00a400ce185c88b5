// Package calshare assembles the API server: options, dependency wiring
// and the serving loop.
package calshare

import (
	"github.com/spf13/pflag"

	auditopts "github.com/kart-io/calshare/pkg/options/audit"
	dbopts "github.com/kart-io/calshare/pkg/options/db"
	httpopts "github.com/kart-io/calshare/pkg/options/http"
	logopts "github.com/kart-io/calshare/pkg/options/log"
	mongoopts "github.com/kart-io/calshare/pkg/options/mongo"
	redisopts "github.com/kart-io/calshare/pkg/options/redis"
	sessionopts "github.com/kart-io/calshare/pkg/options/session"
)

// Options aggregates every option group of the API server.
type Options struct {
	Log     *logopts.Options
	HTTP    *httpopts.Options
	DB      *dbopts.Options
	Redis   *redisopts.Options
	Mongo   *mongoopts.Options
	Session *sessionopts.Options
	Audit   *auditopts.Options
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Log:     logopts.NewOptions(),
		HTTP:    httpopts.NewOptions(),
		DB:      dbopts.NewOptions(),
		Redis:   redisopts.NewOptions(),
		Mongo:   mongoopts.NewOptions(),
		Session: sessionopts.NewOptions(),
		Audit:   auditopts.NewOptions(),
	}
}

// AddFlags registers every option group's flags.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.HTTP.AddFlags(fs)
	o.DB.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.Mongo.AddFlags(fs)
	o.Session.AddFlags(fs)
	o.Audit.AddFlags(fs)
}

// Validate validates every option group.
func (o *Options) Validate() error {
	for _, validate := range []func() error{
		o.Log.Validate,
		o.HTTP.Validate,
		o.DB.Validate,
		o.Session.Validate,
		o.Audit.Validate,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	if o.Mongo.Enabled() {
		if err := o.Mongo.Validate(); err != nil {
			return err
		}
	}
	return nil
}
