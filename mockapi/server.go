package mockapi

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/telemetry"
	"axiapac.com/timetrack/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := validation.RegisterRules(v); err != nil {
			panic(err)
		}
	}
}

type Options struct {
	// Secret is the base64 HS256 key for issued tokens; a fixed dev key when empty.
	Secret string
	// TokenTTL defaults to a day.
	TokenTTL time.Duration
	// IncludeUser adds the profile to the login payload. The reference
	// backend only returns the token.
	IncludeUser bool
	Clock       func() time.Time
	Logger      zerolog.Logger
	Registry    *prometheus.Registry
}

type account struct {
	model.UserSummary
	hash      []byte
	token     string
	intervals []interval
}

type interval struct {
	in  time.Time
	out *time.Time
}

// Server is an in-memory stand-in for the attendance backend.
type Server struct {
	engine   *gin.Engine
	secret   string
	ttl      time.Duration
	withUser bool
	now      func() time.Time
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics

	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*account
	exports  map[string]exportFile
}

type exportFile struct {
	contentType string
	data        []byte
}

func New(opts Options) *Server {
	if opts.Secret == "" {
		opts.Secret = base64.StdEncoding.EncodeToString([]byte("timetrack-mock-signing-secret-000"))
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		secret:   opts.Secret,
		ttl:      opts.TokenTTL,
		withUser: opts.IncludeUser,
		now:      func() time.Time { return opts.Clock().UTC() },
		logger:   opts.Logger,
		registry: opts.Registry,
		metrics:  telemetry.NewMetrics(opts.Registry, "timetrack_mock"),
		accounts: map[int64]*account{},
		exports:  map[string]exportFile{},
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.GET("/exports/:name", s.serveExport)

	auth := r.Group("/auth")
	auth.POST("/login", s.login)

	protected := r.Group("/")
	protected.Use(s.authentication())
	{
		protected.POST("/auth/logout", s.logout)
		protected.GET("/auth/me", s.me)

		protected.POST("/attendance/punch-in", s.punchIn)
		protected.POST("/attendance/punch-out", s.punchOut)
		protected.GET("/attendance/me", s.myAttendance)
		protected.GET("/attendance/download/me", s.downloadMine)

		admin := protected.Group("/")
		admin.Use(requirePrivileged())
		admin.GET("/attendance", s.allAttendance)
		admin.GET("/attendance/download/all", s.downloadAll)
		admin.GET("/user", s.listUsers)
	}
	return r
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.Observe(c.Request.Method, path, c.Writer.Status(), elapsed)
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", elapsed).
			Str("request_id", c.GetHeader("X-Request-ID")).
			Msg("served")
	}
}

// AddUser registers an account and returns its id.
func (s *Server) AddUser(name, email, password string, role model.Role) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return 0, fmt.Errorf("email %s already registered", email)
		}
	}
	s.nextID++
	s.accounts[s.nextID] = &account{
		UserSummary: model.UserSummary{ID: s.nextID, Name: name, Email: email, Role: role},
		hash:        hash,
	}
	return s.nextID, nil
}

// RevokeToken invalidates the user's active token, as a login elsewhere would.
func (s *Server) RevokeToken(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		a.token = ""
	}
}

// Seed adds the demo accounts used by cmd/mockserver.
func (s *Server) Seed() error {
	users := []struct {
		name, email, password string
		role                  model.Role
	}{
		{"Super Admin", "admin@timetrack.dev", "Admin@123", model.RoleSuperAdmin},
		{"Alice Employee", "alice@timetrack.dev", "Alice@123", model.RoleEmployee},
		{"Bob Employee", "bob@timetrack.dev", "Bob@1234", model.RoleEmployee},
	}
	for _, u := range users {
		if _, err := s.AddUser(u.name, u.email, u.password, u.role); err != nil {
			return err
		}
	}
	return nil
}
