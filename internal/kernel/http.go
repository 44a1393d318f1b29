// Package kernel assembles the global middleware stack around the route table.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/rigparts/app/routes"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/metrics"
	"github.com/shashiranjanraj/rigparts/pkg/middleware"
	"github.com/shashiranjanraj/rigparts/pkg/reqid"
	"github.com/shashiranjanraj/rigparts/pkg/router"
	"github.com/shashiranjanraj/rigparts/pkg/session"
)

// HTTPKernel owns the router with every global middleware applied.
type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router. Global middleware, outermost first:
//  1. Prometheus metrics, for accurate total latency
//  2. Recovery
//  3. Request ID, injected before anything logs
//  4. Logger
//  5. Session (cookie or Redis) holding the cart
//  6. CORS
//  7. Rate limiter
func NewHTTPKernel(deps routes.Deps) *HTTPKernel {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	opts := session.DefaultOptions()
	opts.Secure = config.AppEnv() == "production"
	r.Use(session.Middleware(sessionStore(), opts))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	// No auth, no rate limit budget worth worrying about.
	r.Get("/metrics", "metrics", metrics.Handler())

	routes.Register(r, deps)

	return &HTTPKernel{router: r}
}

func sessionStore() session.Store {
	if config.SessionDriver() == "redis" {
		return session.RedisStore{}
	}
	if config.SessionDriver() != "cookie" {
		logger.Warn("kernel: unknown SESSION_DRIVER, using cookie", "driver", config.SessionDriver())
	}
	return session.CookieStore{}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table for route:list.
func (k *HTTPKernel) Router() *router.Router { return k.router }
