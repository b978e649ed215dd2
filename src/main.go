package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"eventreg/src/boot"
	"eventreg/src/config"
	"eventreg/src/controllers"
	"eventreg/src/db"
	"eventreg/src/lib"
	"eventreg/src/middlewares"
	"eventreg/src/services"
	"eventreg/src/types"
	"eventreg/src/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const healthPath = "/health"

type application struct {
	cfg           *config.Config
	log           *zerolog.Logger
	authService   *services.AuthService
	checkout      *controllers.CheckoutController
	registrations *controllers.RegistrationController
	auth          *controllers.AuthController
	webhooks      *controllers.WebhookController
	reconciler    *services.Reconciler
}

func newApplication(cfg *config.Config, base zerolog.Logger, store db.StorageAdapter, gateway services.PaymentGateway, ledger services.EventLedger, notifier services.Notifier) *application {
	registrations := services.NewRegistrationService(store, lib.Component(base, "registrations"))
	checkout := services.NewCheckoutService(registrations, gateway, notifier, cfg.WebhooksEnabled(), lib.Component(base, "checkout"))
	handler := services.NewPaymentEventHandler(registrations, notifier, lib.Component(base, "payments"))
	receiver := services.NewWebhookReceiver(gateway, cfg.StripeWebhookSecret, handler, ledger, lib.Component(base, "webhooks"))
	authService := services.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTExpiresIn, lib.Component(base, "auth"))

	return &application{
		cfg:           cfg,
		log:           lib.Component(base, "http"),
		authService:   authService,
		checkout:      controllers.NewCheckoutController(checkout),
		registrations: controllers.NewRegistrationController(registrations),
		auth:          controllers.NewAuthController(authService),
		webhooks:      controllers.NewWebhookController(receiver),
		reconciler:    services.NewReconciler(registrations, gateway, notifier, cfg.ReconcileMinAge, lib.Component(base, "reconciler")),
	}
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(types.JSONTagName)
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "Stripe-Signature", middlewares.HeaderRequestID)
	cc.ExposeHeaders = []string{middlewares.HeaderRequestID}

	var origins []string
	for _, o := range strings.Split(cfg.ClientURL, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if strings.Contains(o, "://") {
			origins = append(origins, o)
		}
	}
	if cfg.IsLocal() || len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = origins
	cc.AllowCredentials = true
	return cc
}

func setupRouter(app *application) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		middlewares.RequestLogger(app.log),
		gin.CustomRecoveryWithWriter(gin.DefaultErrorWriter, func(ctx *gin.Context, recovered any) {
			utils.Fail(ctx, fmt.Errorf("panic: %v", recovered))
		}),
		middlewares.SecureHeaders,
		cors.New(corsConfig(app.cfg)),
		preflight,
		middlewares.MaintenanceMode(app.cfg.MaintenanceMode, healthPath, stripeWebhookPath),
	)
	router.NoRoute(func(ctx *gin.Context) {
		utils.AbortWithCode(ctx, http.StatusNotFound, types.CODE_ROUTE_NOT_FOUND, "Route not found")
	})
	router.NoMethod(func(ctx *gin.Context) {
		utils.AbortWithCode(ctx, http.StatusMethodNotAllowed, types.CODE_METHOD_NOT_ALLOWED, "Method not allowed")
	})

	api := router.Group(app.cfg.APIPrefix)
	api.GET(healthPath, controllers.Health)
	checkoutHandlers(api, app.checkout)
	guestAuthRoutes(api, app.auth)
	stripeWebhookRoute(api, app.webhooks)

	authorized := api.Group("")
	authorized.Use(middlewares.AuthMiddleware(app.authService))
	{
		authRoutes(authorized, app.auth)
		registrationHandlers(authorized, app.registrations)
	}
	return router
}

// preflight answers OPTIONS requests the cors middleware passed through, so
// any path accepts them.
func preflight(ctx *gin.Context) {
	if ctx.Request.Method == http.MethodOptions {
		ctx.AbortWithStatus(http.StatusNoContent)
		return
	}
	ctx.Next()
}

func loadEnv() {
	if os.Getenv("API_ENV") != "local" {
		return
	}
	cwd, _ := os.Getwd()
	if err := godotenv.Load(path.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func main() {
	loadEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", err)
		os.Exit(1)
	}
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	base := lib.InitLogger(cfg.LogDir, cfg.IsLocal())
	log := lib.Component(base, "main")
	registerValidators()
	lib.SetStripeTimeout(cfg.StripeTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := boot.InitStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage initialization failed")
	}
	ledger := boot.InitEventLedger(ctx, log)
	notifier := services.NewMailNotifier(cfg.SMTP, cfg.EventName, nil, lib.Component(base, "notifier"))
	gateway := services.NewStripeGateway(nil, lib.Component(base, "stripe"))

	app := newApplication(cfg, base, store, gateway, ledger, notifier)
	if cfg.WebhooksEnabled() {
		log.Info().Msg("webhook secret configured, payment status is written by webhooks only")
	} else {
		log.Warn().Msg("STRIPE_WEBHOOK_SECRET not set, /checkout/confirm will mark registrations paid")
	}
	if cfg.StripeSecretKey != "" {
		if err := boot.InitScheduler(app.reconciler, cfg.ReconcileInterval, log); err != nil {
			log.Error().Err(err).Msg("could not schedule payment reconciliation")
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("prefix", cfg.APIPrefix).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	boot.StopScheduler(log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := lib.CloseRedis(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}
