package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	accounts "github.com/goliatone/go-accounts"
)

// AppConfig is loaded from the environment, .env included in development.
type AppConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	DSN      string `env:"DATABASE_DSN" envDefault:"file:accounts.db?cache=shared&mode=rwc"`

	SigningKey       string   `env:"JWT_SIGNING_KEY,required"`
	TokenExpiration  int      `env:"JWT_EXPIRE_MINUTES" envDefault:"60"`
	PurposeTokenTTL  int      `env:"PURPOSE_TOKEN_TTL_MINUTES" envDefault:"60"`
	Issuer           string   `env:"JWT_ISSUER" envDefault:"accounts"`
	Audience         []string `env:"JWT_AUDIENCE" envDefault:"accounts"`
	ClientBaseURL    string   `env:"CLIENT_BASE_URL" envDefault:"http://localhost:3000"`
	ExposeDebugLinks bool     `env:"EXPOSE_DEBUG_LINKS" envDefault:"false"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPFrom string `env:"SMTP_FROM"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func (c AppConfig) GetSigningKey() string     { return c.SigningKey }
func (c AppConfig) GetTokenExpiration() int   { return c.TokenExpiration }
func (c AppConfig) GetPurposeTokenTTL() int   { return c.PurposeTokenTTL }
func (c AppConfig) GetIssuer() string         { return c.Issuer }
func (c AppConfig) GetAudience() []string     { return c.Audience }
func (c AppConfig) GetClientBaseURL() string  { return c.ClientBaseURL }
func (c AppConfig) GetExposeDebugLinks() bool { return c.ExposeDebugLinks }

func loadConfig() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("accounts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)

	cfg, err := loadConfig()
	if err != nil {
		lgr.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg, lgr)
	if err != nil {
		lgr.Error("database error", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := accounts.NewRepositoryManager(db)

	tokenService, err := accounts.NewTokenService(
		[]byte(cfg.SigningKey),
		cfg.TokenExpiration,
		cfg.Issuer,
		cfg.Audience,
		lgr.GetLogger("tokens"),
	)
	if err != nil {
		lgr.Error("token service error", "error", err)
		os.Exit(1)
	}

	codec, err := accounts.NewTokenCodec(
		[]byte(cfg.SigningKey),
		accounts.WithTokenTTL(time.Duration(cfg.PurposeTokenTTL)*time.Minute),
		accounts.WithTokenLogger(lgr.GetLogger("codec")),
	)
	if err != nil {
		lgr.Error("token codec error", "error", err)
		os.Exit(1)
	}

	auther := accounts.NewAuthenticator(repo, tokenService).
		WithLogger(lgr.GetLogger("auth"))

	var notifier accounts.Notifier
	if cfg.SMTPHost != "" {
		notifier = accounts.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		notifier = accounts.LogNotifier{Logger: lgr.GetLogger("mailer")}
	}

	seeder := accounts.NewSeeder(repo).WithLogger(lgr.GetLogger("seeder"))
	if err := seeder.SeedRoles(ctx); err != nil {
		lgr.Error("role seeding error", "error", err)
		os.Exit(1)
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := seeder.SeedAdminUser(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			lgr.Error("admin seeding error", "error", err)
			os.Exit(1)
		}
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "accounts",
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))

	authCtrl := accounts.NewAuthController(repo, auther, codec, cfg,
		accounts.WithControllerLogger(lgr.GetLogger("auth:ctrl")),
		accounts.WithControllerNotifier(notifier),
	)
	authCtrl.RegisterRoutes(srv.Router().Group("/auth"))

	protected := accounts.ProtectedRoute(auther)
	adminOnly := accounts.RequireRole(accounts.RoleAdmin)

	usersCtrl := accounts.NewUsersController(repo,
		accounts.WithUsersLogger(lgr.GetLogger("users:ctrl")),
	)
	usersCtrl.RegisterRoutes(srv.Router().Group("/users"), protected, adminOnly)

	sectorsCtrl := accounts.NewSectorsController(repo,
		accounts.WithSectorsLogger(lgr.GetLogger("sectors:ctrl")),
	)
	sectorsCtrl.RegisterRoutes(srv.Router().Group("/sectors"), protected)

	lgr.Info("listening", "addr", cfg.HTTPAddr)
	srv.Serve(cfg.HTTPAddr)

	waitExitSignal()
}

func openDatabase(ctx context.Context, cfg AppConfig, lgr *glog.BaseLogger) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	migrations, err := fs.Sub(accounts.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	migrator := accounts.NewMigrator(migrations, ".").
		WithLogger(lgr.GetLogger("migrate"))
	if err := migrator.Run(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
