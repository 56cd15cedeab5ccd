package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"invoiceBack/internal/config"
	"invoiceBack/internal/handlers"
	"invoiceBack/internal/logger"
	"invoiceBack/internal/mail"
	"invoiceBack/internal/oauth"
	"invoiceBack/internal/pdf"
	"invoiceBack/internal/repositories"
	"invoiceBack/internal/services"
	"invoiceBack/internal/storage"
	"invoiceBack/utils"
)

type application struct {
	cfg      config.Config
	errorLog zerolog.Logger
	infoLog  zerolog.Logger

	db  *sql.DB
	rdb *redis.Client

	tokenManager   *utils.Manager
	invoiceHandler *handlers.InvoiceHandler
	authHandler    *handlers.AuthHandler
}

func initializeApp(ctx context.Context, cfg config.Config) (*application, error) {
	base, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	errBase, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	app := &application{
		cfg:      cfg,
		infoLog:  logger.WithComponent(base, "http"),
		errorLog: logger.WithComponent(errBase, "http"),
	}

	var (
		invoiceStore services.InvoiceStore
		userStore    services.UserStore
		otpStore     services.OTPStore
		counter      services.SequenceCounter
	)

	if cfg.Redis.Addr != "" {
		app.rdb, err = openRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		otpStore = repositories.NewOTPRepository(app.rdb)
	} else {
		otpStore = repositories.NewMemoryOTPRepo()
	}

	switch cfg.Database.Driver {
	case config.DriverMemory:
		invoiceStore = repositories.NewMemoryInvoiceRepo()
		userStore = repositories.NewMemoryUserRepo()
		counter = repositories.NewMemoryCounter()
		base.Warn().Msg("using in-memory storage; data is lost on restart")
	default:
		db, dialect, err := openDB(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.db = db
		invoiceStore = repositories.NewInvoiceRepo(db, dialect)
		userStore = repositories.NewUserRepository(db, dialect)
		counter = repositories.NewCounterRepo(db, dialect)
	}
	if cfg.Sequence.Backend == config.SequenceRedis {
		counter = repositories.NewRedisCounter(app.rdb)
	}

	app.tokenManager, err = utils.NewManager(cfg.Auth.JWTSecret)
	if err != nil {
		app.Close()
		return nil, err
	}

	mailer := mail.NewClient(nil, cfg.Brevo.APIKey, cfg.Brevo.SenderEmail, cfg.Brevo.SenderName, cfg.Brevo.BaseURL)
	renderer := pdf.NewRenderer(pdf.Options{
		CompanyName: cfg.Company.Name,
		Tagline:     cfg.Company.Tagline,
		Currency:    cfg.Company.Currency,
		LogoPath:    cfg.Company.LogoPath,
	})

	delivery := services.NewDeliveryService(renderer, mailer, services.CompanyProfile{
		Name:         cfg.Company.Name,
		Tagline:      cfg.Company.Tagline,
		Currency:     cfg.Company.Currency,
		ContactEmail: cfg.Company.ContactEmail,
		Location:     cfg.Company.Location,
	}, logger.WithComponent(base, "delivery"))

	if cfg.Storage.Enabled {
		archive, err := storage.NewArchive(storage.Config{
			Endpoint:      cfg.Storage.Endpoint,
			Region:        cfg.Storage.Region,
			Bucket:        cfg.Storage.Bucket,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		delivery.Archiver = archive
	}

	app.invoiceHandler = &handlers.InvoiceHandler{
		Service:   services.NewInvoiceService(invoiceStore, services.NewSequenceService(counter)),
		Delivery:  delivery,
		PublicURL: cfg.Server.PublicURL,
		Log:       logger.WithComponent(base, "invoices"),
	}
	app.authHandler = &handlers.AuthHandler{
		Service: &services.AuthService{
			Users:           userStore,
			OTPs:            otpStore,
			Mailer:          mailer,
			Google:          oauth.NewGoogleVerifier(cfg.Auth.GoogleClientID),
			TokenManager:    app.tokenManager,
			AdminAccessCode: cfg.Auth.AdminAccessCode,
			AccessTTL:       cfg.AccessTTL(),
			OTPTTL:          cfg.OTPTTL(),
			MaxOTPAttempts:  cfg.Auth.OTPMaxAttempts,
			CompanyName:     cfg.Company.Name,
			Now:             time.Now,
		},
		Log: logger.WithComponent(base, "auth"),
	}

	return app, nil
}

func (app *application) Close() {
	if app.db != nil {
		_ = app.db.Close()
	}
	if app.rdb != nil {
		_ = app.rdb.Close()
	}
}

func openDB(ctx context.Context, driver, dsn string) (*sql.DB, repositories.Dialect, error) {
	var (
		db      *sql.DB
		dialect repositories.Dialect
		err     error
	)

	switch driver {
	case config.DriverMySQL:
		mcfg, perr := mysql.ParseDSN(dsn)
		if perr != nil {
			return nil, dialect, fmt.Errorf("parse mysql dsn: %w", perr)
		}
		mcfg.ParseTime = true
		mcfg.Loc = time.UTC
		db, err = sql.Open("mysql", mcfg.FormatDSN())
		dialect = repositories.MySQL
	case config.DriverPostgres:
		db, err = sql.Open("pgx", dsn)
		dialect = repositories.Postgres
	default:
		return nil, dialect, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, dialect, fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, dialect, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, dialect, nil
}

func openRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
