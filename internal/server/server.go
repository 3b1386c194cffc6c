package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/USA-RedDragon/ota-server/internal/channels"
	"github.com/USA-RedDragon/ota-server/internal/config"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	requestTimeout = 120 * time.Second
	drainTimeout   = 240 * time.Second
)

// listener is one HTTP server bound to a single address family.
type listener struct {
	name    string
	network string
	server  *http.Server
}

type Server struct {
	listeners []listener
	stopped   atomic.Bool
}

// Router serves paths with a trailing slash as if it were absent.
type Router struct {
	*gin.Engine
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if len(req.URL.Path) > 1 && strings.HasSuffix(req.URL.Path, "/") {
		req.URL.Path = filepath.Clean(req.URL.Path)
	}
	r.Engine.ServeHTTP(w, req)
}

// NewRouter builds the API router serving device and admin requests.
func NewRouter(config *config.Config, db *gorm.DB, engine *channels.Engine) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if config.HTTP.PProf.Enabled {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	if config.HTTP.PProf.Enabled {
		pprof.Register(r)
	}

	applyMiddleware(r, config, "api", db, engine)
	applyRoutes(r, config)
	return r
}

func newMetricsRouter(config *config.Config, db *gorm.DB, engine *channels.Engine) *gin.Engine {
	r := gin.New()
	applyMiddleware(r, config, "metrics", db, engine)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func dualStack(name string, l config.HTTPListener, handler http.Handler) []listener {
	build := func(addr string) *http.Server {
		return &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: requestTimeout,
			WriteTimeout:      requestTimeout,
			Handler:           handler,
		}
	}
	return []listener{
		{name: name + " IPv4", network: "tcp4", server: build(fmt.Sprintf("%s:%d", l.IPV4Host, l.Port))},
		{name: name + " IPv6", network: "tcp6", server: build(fmt.Sprintf("[%s]:%d", l.IPV6Host, l.Port))},
	}
}

func NewServer(config *config.Config, db *gorm.DB, engine *channels.Engine) *Server {
	s := &Server{}
	s.listeners = dualStack("HTTP", config.HTTP.HTTPListener, &Router{Engine: NewRouter(config, db, engine)})
	if config.HTTP.Metrics.Enabled {
		s.listeners = append(s.listeners, dualStack("Metrics", config.HTTP.Metrics.HTTPListener, newMetricsRouter(config, db, engine))...)
	}
	return s
}

// Start binds every listener before serving any of them, so a bind failure
// leaves nothing running.
func (s *Server) Start() error {
	bound := make([]net.Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ln, err := net.Listen(l.network, l.server.Addr)
		if err != nil {
			for _, open := range bound {
				_ = open.Close()
			}
			return fmt.Errorf("failed to listen on %s: %w", l.server.Addr, err)
		}
		bound = append(bound, ln)
	}

	for i, l := range s.listeners {
		go func(l listener, ln net.Listener) {
			if err := l.server.Serve(ln); err != nil && !s.stopped.Load() {
				slog.Error("Server error", "server", l.name, "error", err.Error())
			}
		}(l, bound[i])
		slog.Info("Server started", "server", l.name, "address", l.server.Addr)
	}
	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	s.stopped.Store(true)

	errGrp := errgroup.Group{}
	for _, l := range s.listeners {
		errGrp.Go(func() error {
			return l.server.Shutdown(ctx)
		})
	}
	return errGrp.Wait()
}
