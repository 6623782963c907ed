package app

import (
	"context"
	"net/http"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/gorilla/sessions"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/karadag/storefront/config"
	"github.com/karadag/storefront/internal/auth"
	"github.com/karadag/storefront/internal/cart"
	"github.com/karadag/storefront/internal/catalog"
	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/pkg/metrics"
)

type Application struct {
	appConfig    *config.AppConfig
	stores       *Lazy[*repository.Stores]
	sched        *cron.Cron
	bus          EventBus.Bus
	sessionStore sessions.Store
	tokens       *auth.TokenIssuer
	gate         *auth.Gate

	authService    *auth.Service
	catalogService *catalog.Service
	cartService    *cart.Service
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider   = (*Application)(nil)
	_ StoresProvider   = (*Application)(nil)
	_ EventBusProvider = (*Application)(nil)
	_ ServiceProvider  = (*Application)(nil)
	_ AppContext       = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	a := &Application{
		appConfig:    appConfig,
		bus:          EventBus.New(),
		sessionStore: newSessionStore(appConfig.Web.Secret),
		tokens:       auth.NewTokenIssuer(appConfig.Web.Secret, appConfig.TokenTTL()),
	}
	a.stores = NewLazy(func(ctx context.Context) (*repository.Stores, error) {
		return openStores(ctx, a.appConfig)
	})
	a.gate = auth.NewGate(
		auth.BearerMechanism{Tokens: a.tokens},
		auth.SessionMechanism{Store: a.sessionStore, Name: appConfig.Web.SessionName},
	)
	a.authService = auth.NewService(a, a.tokens)
	a.catalogService = catalog.NewService(a, a.bus)
	a.cartService = cart.NewService(a)
	a.subscribeEvents()
	return a
}

func newSessionStore(secret string) sessions.Store {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

// Stores returns the process-wide stores, connecting on first use
func (a *Application) Stores(ctx context.Context) (*repository.Stores, error) {
	return a.stores.Get(ctx)
}

func (a *Application) EventBus() EventBus.Bus {
	return a.bus
}

func (a *Application) SessionStore() sessions.Store {
	return a.sessionStore
}

func (a *Application) Tokens() *auth.TokenIssuer {
	return a.tokens
}

func (a *Application) AuthService() *auth.Service {
	return a.authService
}

func (a *Application) CatalogService() *catalog.Service {
	return a.catalogService
}

func (a *Application) CartService() *cart.Service {
	return a.cartService
}

// Gate resolves a request to a principal: bearer token first, then the login session
func (a *Application) Gate() *auth.Gate {
	return a.gate
}

// InitLogging applies the configured time zone and installs the global zap logger
func InitLogging(cfg *config.AppConfig) {
	loc, locErr := time.LoadLocation(cfg.System.Location)
	if locErr == nil {
		time.Local = loc
	}
	logger, err := newLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	if locErr != nil {
		zap.S().Warnf("time zone %q: %v", cfg.System.Location, locErr)
	}
}

// newLogger writes to stdout; with file output enabled the file gets JSON
// lines rotated by lumberjack while stdout keeps the console encoding.
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if lc.Mode == "production" {
		zc = zap.NewProductionConfig()
	}
	if !lc.FileEnable {
		zc.OutputPaths = []string{"stdout"}
		return zc.Build(zap.AddCaller())
	}

	rotated := zapcore.AddSync(&lumberjack.Logger{
		Filename:   lc.Filename,
		MaxSize:    64, // MB
		MaxBackups: 7,
		MaxAge:     7, // days
	})
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), rotated, zc.Level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(os.Stdout), zc.Level),
	)
	return zap.New(core, zap.AddCaller()), nil
}

func (a *Application) Init(cfg *config.AppConfig) {
	InitLogging(cfg)

	err := metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// The store connects lazily; a failure here is retried by the first request.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.MigrateDB(ctx); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	} else {
		zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		a.checkSuper(ctx)
	}()

	a.initJob()
}

func (a *Application) MigrateDB(ctx context.Context) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			if err2, ok := err1.(error); ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	st, err := a.Stores(ctx)
	if err != nil {
		return err
	}
	return st.Migrate(ctx)
}

// InitDb drops every storefront table, recreates the schema and seeds the
// admin account and the sample catalog.
func (a *Application) InitDb(ctx context.Context) error {
	st, err := a.Stores(ctx)
	if err != nil {
		return err
	}
	if err := st.Drop(ctx); err != nil {
		return err
	}
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	a.checkSuper(ctx)
	return a.SeedCatalog(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	a.bus.WaitAsync()
	metrics.Flush()
	_ = metrics.Close()

	if st, ok := a.stores.Peek(); ok && st.Close != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(ctx); err != nil {
			zap.L().Warn("failed to close stores", zap.Error(err))
		}
	}
	_ = zap.L().Sync()
}
