// Package router wires the middleware chain, handlers and permission
// guards onto the gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/internal/calshare/handler"
	"github.com/kart-io/calshare/pkg/middleware"
	"github.com/kart-io/calshare/pkg/permission"
	"github.com/kart-io/calshare/pkg/session"
)

// Deps carries everything the router needs.
type Deps struct {
	Sessions   session.Store
	CookieName string

	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Organizations *handler.OrganizationHandler
	Calendars     *handler.CalendarHandler
	Events        *handler.EventHandler
	Audit         *handler.AuditHandler
	Monitoring    *handler.MonitoringHandler

	Evaluator *biz.PermissionService
	Auditor   *biz.AuditService
}

// New builds the gin engine with the full route table.
func New(d Deps) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
	)

	engine.GET("/healthz", d.Monitoring.Healthz)

	required := middleware.Auth(
		middleware.AuthWithStore(d.Sessions),
		middleware.AuthWithCookieName(d.CookieName),
	)
	// Guarded routes authenticate optionally: the guard itself denies and
	// audits anonymous callers, so they get a 403 plus an audit trail
	// instead of a bare 401.
	optional := middleware.Auth(
		middleware.AuthWithStore(d.Sessions),
		middleware.AuthWithCookieName(d.CookieName),
		middleware.AuthOptional(),
	)

	guard := func(req permission.Requirement) gin.HandlerFunc {
		return middleware.Guard(req,
			middleware.GuardWithEvaluator(d.Evaluator),
			middleware.GuardWithFallback(d.Auditor),
		)
	}

	view := permission.Any(permission.ViewCalendar, permission.ViewCalendarTimesOnly, permission.ManageCalendar)
	contribute := permission.Any(permission.AddToCalendar, permission.ManageCalendar)
	comment := permission.Any(permission.CommentOnCalendar, permission.ManageCalendar)
	manage := permission.Any(permission.ManageCalendar)

	v1 := engine.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.Auth.Register)
			auth.POST("/login", d.Auth.Login)
			auth.POST("/logout", required, d.Auth.Logout)
			auth.GET("/me", required, d.Auth.Me)
		}

		users := v1.Group("/users", required)
		{
			users.GET("", d.Users.List)
			users.GET("/:user", d.Users.Get)
			users.PUT("/:user", d.Users.Update)
			users.DELETE("/:user", d.Users.Delete)
		}

		orgs := v1.Group("/orgs", required)
		{
			orgs.POST("", d.Organizations.Create)
			orgs.GET("", d.Organizations.List)
			orgs.GET("/:org", d.Organizations.Get)
			orgs.PUT("/:org", d.Organizations.Update)
			orgs.DELETE("/:org", d.Organizations.Delete)
			orgs.GET("/:org/members", d.Organizations.ListMembers)
			orgs.POST("/:org/members", d.Organizations.AddMember)
			orgs.DELETE("/:org/members/:user", d.Organizations.RemoveMember)
		}

		calendars := v1.Group("/calendars")
		{
			calendars.POST("", required, d.Calendars.Create)
			calendars.GET("", required, d.Calendars.List)
			calendars.GET("/mine", required, d.Calendars.Mine)

			one := calendars.Group("/:calendar", optional)
			{
				one.GET("", guard(view), d.Calendars.Get)
				one.PUT("", guard(manage), d.Calendars.Update)
				one.DELETE("", guard(manage), d.Calendars.Delete)
				one.GET("/permissions", required, d.Calendars.MyPermissions)

				grants := one.Group("/grants")
				{
					grants.GET("", guard(manage), d.Calendars.ListGrants)
					grants.POST("", guard(manage), d.Calendars.UpsertGrant)
					grants.DELETE("/:user", guard(manage), d.Calendars.RevokeGrant)
				}

				events := one.Group("/events")
				{
					events.GET("", guard(view), d.Events.List)
					events.POST("", guard(contribute), d.Events.Create)
					events.GET("/:event", guard(view), d.Events.Get)
					events.PUT("/:event", guard(manage), d.Events.Update)
					events.DELETE("/:event", guard(manage), d.Events.Delete)
					events.GET("/:event/comments", guard(view), d.Events.Comments)
					events.POST("/:event/comments", guard(comment), d.Events.Comment)
				}
			}
		}

		v1.GET("/audit", required, d.Audit.List)
		v1.GET("/monitoring/status", required, d.Monitoring.Status)
	}

	return engine
}
