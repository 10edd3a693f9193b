package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"axiapac.com/timetrack/config"
	"axiapac.com/timetrack/infrastructure/communication"
	"axiapac.com/timetrack/infrastructure/filesystem"
	"axiapac.com/timetrack/session"
	"axiapac.com/timetrack/telemetry"
	v1 "axiapac.com/timetrack/timetrack/v1"
	"axiapac.com/timetrack/views"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// App wires the session, the API client, the router and the controllers.
type App struct {
	Config   config.Config
	Logger   zerolog.Logger
	Location *time.Location

	Session *session.Context
	Client  *v1.Client
	Router  *Router

	Login          *views.LoginController
	Dashboard      *views.DashboardController
	TimeTable      *views.TimeTableController
	UserManagement *views.UserManagementController
	Header         *views.HeaderController

	shutdown []func(context.Context) error
}

type options struct {
	store      session.Store
	httpClient *http.Client
	logger     *zerolog.Logger
	registry   prometheus.Registerer
	now        func() time.Time
}

type Option func(*options)

func WithStore(s session.Store) Option {
	return func(o *options) { o.store = s }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

func WithRegistry(r prometheus.Registerer) Option {
	return func(o *options) { o.registry = r }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger := telemetry.NewLogger(os.Stderr, cfg.LogLevel, true)
	if o.logger != nil {
		logger = *o.logger
	}

	a := &App{Config: cfg, Logger: logger, Location: loc}

	store := o.store
	if store == nil {
		if store, err = OpenStore(cfg); err != nil {
			return nil, err
		}
	}

	a.Session = session.NewContext(store, logger)
	if err := a.Session.Init(ctx); err != nil {
		return nil, err
	}

	shutdownTracing, err := telemetry.InitTracing(ctx, "timetrack", cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdown = append(a.shutdown, shutdownTracing)

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = telemetry.HTTPClient(nil)
	}

	a.Client = v1.NewClient(cfg.APIBaseURL, a.Session,
		v1.WithHTTPClient(httpClient),
		v1.WithLogger(logger),
		v1.WithMetrics(telemetry.NewMetrics(o.registry, "timetrack")),
	)
	a.Router = NewRouter(a.Session)

	now := o.now()
	a.Login = views.NewLoginController(a.Client.Auth, a.Session, a.Router, logger)
	a.Dashboard = views.NewDashboardController(a.Client.Auth, a.Client.Attendance, a.Session, logger)
	a.TimeTable = views.NewTimeTableController(a.Client.Attendance, loc, now)
	a.UserManagement = views.NewUserManagementController(a.Client.Attendance, loc, now)
	a.Header = views.NewHeaderController(a.Client.Auth, a.Session, a.Router, logger)

	a.Client.OnAuthenticationLost(func(e v1.AuthLostEvent) {
		a.Logger.Warn().Str("path", e.Path).Str("message", e.Message).Msg("signed out by server")
		a.Router.Navigate(views.RouteLogin)
	})
	a.Session.OnTeardown(func(session.TeardownEvent) {
		a.TimeTable.Reset()
		a.UserManagement.Reset()
		a.Dashboard.Dismiss()
	})

	return a, nil
}

// Start lands on the dashboard when a session was restored, login otherwise.
func (a *App) Start() views.Route {
	a.Router.Navigate(views.RouteDashboard)
	return a.Router.Current()
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range a.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenStore picks the session store: a database when a DSN is configured,
// the session file otherwise.
func OpenStore(cfg config.Config) (session.Store, error) {
	if cfg.SessionDSN != "" {
		return session.OpenDBStore(cfg.SessionDSN, session.LogLevelSilent)
	}
	path := cfg.SessionFile
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return session.NewFileStore(path, cfg.SessionPassphrase), nil
}

// Notifier returns the configured summary channels, or nil when none is.
func Notifier(ctx context.Context, cfg config.Config) (communication.Notifier, error) {
	var multi communication.Multi
	if cfg.SlackEnabled() {
		multi = append(multi, communication.NewSlack(cfg.SlackToken, communication.SlackOption{
			InfoChannelID:  cfg.SlackInfoChannel,
			ErrorChannelID: cfg.SlackErrorChannel,
		}))
	}
	if cfg.EmailEnabled() {
		email, err := communication.ConnectEmail(ctx, cfg.EmailFrom, cfg.EmailTo)
		if err != nil {
			return nil, err
		}
		multi = append(multi, email)
	}
	if len(multi) == 0 {
		return nil, nil
	}
	return multi, nil
}

// Archive returns the S3 export archive, or nil when no bucket is set.
func Archive(ctx context.Context, cfg config.Config) (*filesystem.Archive, error) {
	if cfg.ExportBucket == "" {
		return nil, nil
	}
	return filesystem.ConnectArchive(ctx, cfg.ExportBucket, "attendance")
}
