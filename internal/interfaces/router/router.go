package router

import (
	"errors"
	"net/http"
	"time"

	authsvc "easyshifthq-backend/internal/application/auth"
	availsvc "easyshifthq-backend/internal/application/availabilities"
	emailsvc "easyshifthq-backend/internal/application/emails"
	healthsvc "easyshifthq-backend/internal/application/health"
	invsvc "easyshifthq-backend/internal/application/invitations"
	locsvc "easyshifthq-backend/internal/application/locations"
	"easyshifthq-backend/internal/application/notifications"
	tenantsvc "easyshifthq-backend/internal/application/tenants"
	"easyshifthq-backend/internal/config"
	"easyshifthq-backend/internal/infrastructure/database"
	"easyshifthq-backend/internal/infrastructure/persistence"
	authhandler "easyshifthq-backend/internal/interfaces/handlers/auth"
	availhandler "easyshifthq-backend/internal/interfaces/handlers/availabilities"
	healthhandler "easyshifthq-backend/internal/interfaces/handlers/health"
	invhandler "easyshifthq-backend/internal/interfaces/handlers/invitations"
	lochandler "easyshifthq-backend/internal/interfaces/handlers/locations"
	tenanthandler "easyshifthq-backend/internal/interfaces/handlers/tenants"
	"easyshifthq-backend/internal/middleware"
	"easyshifthq-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Deps are the resources behind the app. The caller owns their lifecycle.
type Deps struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Store  *persistence.Store
	Worker *notifications.Worker
}

// NewEmailSender picks Brevo when an API key is set, then SMTP, and falls
// back to logging messages.
func NewEmailSender(cfg *config.Config) emailsvc.Sender {
	switch {
	case cfg.SendinblueAPIKey != "":
		return emailsvc.NewBrevoClient(cfg.SendinblueAPIKey, cfg.MailFrom)
	case cfg.SMTPHost != "":
		return emailsvc.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	default:
		log.Warn().Msg("no mail transport configured; emails are logged only")
		return emailsvc.LogSender{}
	}
}

func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, nil, errors.New("REDIS_URL is required")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	store := persistence.NewStore(db)
	sender := NewEmailSender(cfg)

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}

	app.Use(middleware.CORS(middleware.CORSConfig{
		AppOrigin:     cfg.AppBaseURL,
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
		AllowLocal:    !cfg.IsProduction(),
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.Metrics())
	app.Use(middleware.Session(rdb, sessionCfg))
	app.Use(middleware.BearerAuth(cfg.JWTSecret))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.RouteLogger())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	hh := &healthhandler.Handlers{
		Collector: &healthsvc.Collector{
			Rdb:         rdb,
			DB:          &gormDBPinger{db: db},
			Outbox:      store.Outbox(),
			FrontendURL: cfg.AppBaseURL,
		},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	// Auth
	ah := &authhandler.Handlers{
		Service:   &authsvc.Service{Store: store, BcryptCost: cfg.PasswordHashCost},
		Rdb:       rdb,
		Config:    sessionCfg,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/token", ah.Token)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	// Tenants
	th := &tenanthandler.Handlers{
		Service:   &tenantsvc.Service{Store: store},
		Rdb:       rdb,
		Config:    sessionCfg,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
	}
	tg := app.Group("/api/v1/tenants", middleware.RequireAuth())
	tg.Post("/", th.Create)
	tg.Get("/current", th.Current)

	// Invitations
	ih := &invhandler.Handlers{
		Service: &invsvc.Service{
			Store:       store,
			EmailSender: sender,
			Hasher:      invsvc.BcryptHasher{Cost: cfg.InviteTokenHashCost},
			BaseURL:     cfg.AppBaseURL,
			SSOEnabled:  cfg.SSOEnabled,
		},
		Rdb:    rdb,
		Config: sessionCfg,
	}
	public := app.Group("/api/v1/invitations/public", middleware.RateLimit(cfg.PublicRateLimit, time.Minute))
	public.Post("/verify-token", ih.VerifyToken)
	public.Post("/accept", ih.AcceptPublic)
	ig := app.Group("/api/v1/invitations", middleware.RequireAuth())
	ig.Post("/", middleware.AuthorizePermission(constants.InvitationCreate), ih.Create)
	ig.Post("/bulk", middleware.AuthorizePermission(constants.InvitationBulkCreate), ih.CreateBulk)
	ig.Get("/pending", middleware.AuthorizePermission(constants.InvitationView), ih.Pending)
	ig.Post("/:id/accept", middleware.AuthorizePermission(constants.InvitationManage), ih.Accept)
	ig.Post("/:id/revoke", middleware.AuthorizePermission(constants.InvitationManage), ih.Revoke)
	ig.Post("/:id/resend", middleware.AuthorizePermission(constants.InvitationManage), ih.Resend)

	// Availabilities; ownership checks live in the service.
	avh := &availhandler.Handlers{Service: &availsvc.Service{Store: store}}
	avg := app.Group("/api/v1/availabilities", middleware.RequireAuth())
	avg.Get("/", avh.List)
	avg.Get("/me/weekly", avh.MyWeekly)
	avg.Get("/employee/:employeeId/weekly", avh.EmployeeWeekly)
	avg.Get("/employee/:employeeId/time-off", avh.EmployeeTimeOff)
	avg.Get("/:id", avh.Get)
	avg.Post("/weekly", avh.SubmitWeekly)
	avg.Post("/time-off", avh.SubmitTimeOff)
	avg.Put("/:id/weekly", avh.UpdateWeekly)
	avg.Put("/:id/time-off", avh.UpdateTimeOff)
	avg.Put("/:id/approve", avh.Approve)
	avg.Put("/:id/deny", avh.Deny)
	avg.Delete("/:id", avh.Delete)

	// Locations
	lh := &lochandler.Handlers{Service: &locsvc.Service{Store: store}}
	lg := app.Group("/api/v1/locations", middleware.RequireAuth())
	lg.Get("/", lh.List)
	lg.Get("/active", lh.Active)
	lg.Get("/jurisdiction/:code", lh.ByJurisdiction)
	lg.Get("/timezone/*", lh.ByTimeZone)
	lg.Get("/:id", lh.Get)
	lg.Post("/", middleware.AuthorizePermission(constants.LocationCreate), lh.Create)
	lg.Put("/:id", middleware.AuthorizePermission(constants.LocationEdit), lh.Update)
	lg.Patch("/:id/active", middleware.AuthorizePermission(constants.LocationManageActivity), lh.SetActive)
	lg.Delete("/:id", middleware.AuthorizePermission(constants.LocationDelete), lh.Delete)

	worker := &notifications.Worker{
		Outbox: store.Outbox(),
		Handler: &notifications.Dispatcher{
			Users:     store.Users(),
			Sender:    sender,
			PortalURL: cfg.AppBaseURL,
		},
		BatchSize:   cfg.OutboxBatchSize,
		MaxAttempts: cfg.OutboxMaxAttempts,
		Retention:   cfg.OutboxRetention,
	}

	return app, &Deps{DB: db, Rdb: rdb, Store: store, Worker: worker}, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
