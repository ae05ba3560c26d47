package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/auth"
	"github.com/Mrwire/geniusad-sub002/internal/cache"
	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
	"github.com/Mrwire/geniusad-sub002/internal/cms"
	"github.com/Mrwire/geniusad-sub002/internal/config"
	"github.com/Mrwire/geniusad-sub002/internal/db"
	"github.com/Mrwire/geniusad-sub002/internal/forms"
	"github.com/Mrwire/geniusad-sub002/internal/handlers"
	"github.com/Mrwire/geniusad-sub002/internal/middleware"
	"github.com/Mrwire/geniusad-sub002/internal/notifications"
	"github.com/Mrwire/geniusad-sub002/internal/pages"
	"github.com/Mrwire/geniusad-sub002/internal/sitectx"
	"github.com/Mrwire/geniusad-sub002/internal/submissions"
	"github.com/Mrwire/geniusad-sub002/internal/subsidiaries"
	"github.com/Mrwire/geniusad-sub002/internal/uitools"
	"github.com/Mrwire/geniusad-sub002/internal/users"
	"github.com/Mrwire/geniusad-sub002/internal/validation"
	"github.com/Mrwire/geniusad-sub002/internal/web"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Without redis the view cache lives in process memory.
	var cacheStore cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  cfg.AccessTTL(),
			RefreshTTL: cfg.RefreshTTL(),
			Issuer:     "agency-site",
		}
	} else {
		logger.Info("jwt auth disabled")
	}

	var notifier submissions.Notifier
	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.NotifyEmail, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		notifier = mailer
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}

	val := validation.New()

	registry, err := forms.LoadRegistry(cfg.FormsFile)
	if err != nil {
		logger.Error("form definitions invalid", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("forms loaded", slog.Any("forms", registry.IDs()))

	subsidiariesService := subsidiaries.NewService(subsidiaries.NewRepository(cols.Subsidiaries), cfg.Timezone)
	caseStudiesService := casestudies.NewService(casestudies.NewRepository(cols.CaseStudies), cfg.Timezone, subsidiariesService)
	subsidiariesService.SetRefUpdater(caseStudiesService)
	pagesService := pages.NewService(pages.NewRepository(cols.Pages), cfg.Timezone, cfg.DefaultLocale)
	usersService := users.NewService(users.NewRepository(cols.Users), cfg.Timezone)
	submissionsService := submissions.NewService(submissions.NewRepository(cols.FormSubmissions), cfg.Timezone, notifier, logger)

	cmsClient := cms.NewClient(pagesService, caseStudiesService, subsidiariesService, cacheStore, cfg.CacheTTL(), logger)
	caseStudiesService.SetChangeListener(cmsClient)
	subsidiariesService.SetChangeListener(cmsClient)
	pagesService.SetChangeListener(cmsClient)

	server := &handlers.Server{
		Cfg:    cfg,
		Users:  usersService,
		Tokens: jwtManager,
		Val:    val,
		Log:    logger,
	}
	caseStudiesHandler := casestudies.NewHandler(caseStudiesService, val, logger)
	subsidiariesHandler := subsidiaries.NewHandler(subsidiariesService, val, logger)
	pagesHandler := pages.NewHandler(pagesService, val, logger)
	submissionsHandler := submissions.NewHandler(submissionsService, val, logger)
	formsHandler := forms.NewHandler(registry, val, submissionsService, logger)
	toolsHandler := uitools.NewHandler(uitools.NewMockGenerator(), val, logger)

	webHandler, err := web.NewHandler(cmsClient, registry, formsHandler, val, cfg.SupportedLocales, logger)
	if err != nil {
		logger.Error("templates invalid", slog.String("error", err.Error()))
		os.Exit(1)
	}

	resolver := sitectx.NewResolver(cfg.DefaultLocale, cfg.SupportedLocales, cfg.CookieSecure)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Authenticate(jwtManager))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))
	r.Use(resolver.Middleware)

	formsLimiter := middleware.NewRateLimiter(cfg.RateLimitForms, cfg.RateLimitWindow())
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitLogin, cfg.RateLimitWindow())
	toolsLimiter := middleware.NewRateLimiter(cfg.RateLimitTools, cfg.RateLimitWindow())
	staff := middleware.RequireRole(cfg.AdminAPIKey, jwtManager, users.RoleAdmin, users.RoleEditor)
	adminOnly := middleware.RequireRole(cfg.AdminAPIKey, jwtManager, users.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/case-studies", caseStudiesHandler.PublicList)
		api.Get("/case-studies/facets", caseStudiesHandler.PublicFacets)
		api.Get("/case-studies/{slug}", caseStudiesHandler.PublicGetBySlug)
		api.Get("/subsidiaries", subsidiariesHandler.PublicList)
		api.Get("/subsidiaries/{slug}", subsidiariesHandler.PublicGetBySlug)
		api.Get("/pages/{slug}", pagesHandler.PublicGet)
		api.Get("/forms/{id}", formsHandler.Get)
		api.With(formsLimiter.Middleware).Post("/forms/{id}", formsHandler.Post)
		api.With(toolsLimiter.Middleware).Post("/ui-tools", toolsHandler.Call)

		api.Route("/auth", func(a chi.Router) {
			a.With(loginLimiter.Middleware).Post("/login", server.Login)
			a.Post("/refresh", server.Refresh)
			a.Post("/logout", server.Logout)
			a.With(middleware.RequireUser()).Get("/me", server.Me)
		})

		// chi requires middlewares before routes, so the protected set lives in its own group.
		api.Route("/admin", func(admin chi.Router) {
			admin.Group(func(protected chi.Router) {
				protected.Use(staff)
				protected.Get("/case-studies", caseStudiesHandler.AdminList)
				protected.Post("/case-studies", caseStudiesHandler.AdminCreate)
				protected.Put("/case-studies/{id}", caseStudiesHandler.AdminUpdate)
				protected.Delete("/case-studies/{id}", caseStudiesHandler.AdminDelete)
				protected.Get("/subsidiaries", subsidiariesHandler.AdminList)
				protected.Post("/subsidiaries", subsidiariesHandler.AdminCreate)
				protected.Put("/subsidiaries/{id}", subsidiariesHandler.AdminUpdate)
				protected.Delete("/subsidiaries/{id}", subsidiariesHandler.AdminDelete)
				protected.Get("/pages", pagesHandler.AdminList)
				protected.Post("/pages", pagesHandler.AdminCreate)
				protected.Put("/pages/{id}", pagesHandler.AdminUpdate)
				protected.Delete("/pages/{id}", pagesHandler.AdminDelete)
				protected.Get("/submissions", submissionsHandler.AdminList)
				protected.Get("/submissions/{id}", submissionsHandler.AdminGetByID)
				protected.Patch("/submissions/{id}", submissionsHandler.AdminUpdateStatus)
			})
			admin.Group(func(protected chi.Router) {
				protected.Use(adminOnly)
				protected.Post("/users", server.AdminCreateUser)
				protected.Get("/users/{id}", server.AdminGetUser)
			})
		})
	})

	r.Get("/", webHandler.Home)
	r.Get("/work", webHandler.Work)
	r.Get("/work/{slug}", webHandler.CaseStudy)
	r.Get("/subsidiaries/{slug}", webHandler.Subsidiary)
	r.Get("/contact", webHandler.ContactForm)
	r.With(formsLimiter.Middleware).Post("/contact", webHandler.ContactSubmit)
	r.Get("/p/{slug}", webHandler.Page)
	r.NotFound(webHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
