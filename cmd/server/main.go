package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"studiodesk/internal/cache"
	"studiodesk/internal/config"
	"studiodesk/internal/database"
	"studiodesk/internal/gateway"
	"studiodesk/internal/handlers"
	"studiodesk/internal/jobs"
	"studiodesk/internal/logging"
	"studiodesk/internal/metrics"
	"studiodesk/internal/middleware"
	"studiodesk/internal/notify"
	"studiodesk/internal/services"
	"studiodesk/internal/store"
	"studiodesk/pkg/auth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting StudioDesk Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DB: SQLite)", cfg.Port)

	// Initialize SQLite database (user accounts)
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		log.Fatalf("❌ Failed to create database directory: %v", err)
	}
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Load sync policy (which entities are cached locally / pushed upstream)
	policy := config.DefaultSyncPolicy()
	if loaded, err := config.LoadSyncPolicy(cfg.SyncPolicyPath); err == nil {
		policy = loaded
		log.Printf("✅ Sync policy loaded from %s", cfg.SyncPolicyPath)
	} else {
		log.Printf("⚠️  Using built-in sync policy: %v", err)
	}
	policyHolder := config.NewPolicyHolder(policy)

	// Initialize the shared application store
	st := store.New()

	// Local snapshot cache: restore the client collection saved by a
	// previous run before any request is served.
	clientCache, err := cache.New(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Failed to initialize snapshot cache: %v", err)
	}
	if policyHolder.Get().For("clients").CacheBacked {
		if restored := clientCache.Load(); len(restored) > 0 {
			st.ReplaceClients(restored)
			log.Printf("✅ Restored %d clients from snapshot cache", len(restored))
		}
	}

	// Persist the client collection on every mutation. The hook runs after
	// the swap, so it always writes the post-change state.
	st.OnChange(store.Clients, func() {
		if !policyHolder.Get().For("clients").CacheBacked {
			return
		}
		if err := clientCache.Persist(st.Clients()); err != nil {
			log.Printf("⚠️  [CACHE] Failed to persist clients: %v", err)
		}
	})

	// Track collection sizes through the same change hooks the cache uses
	for col, size := range map[store.Collection]func() int{
		store.Clients:     func() int { return len(st.Clients()) },
		store.Users:       func() int { return len(st.Users()) },
		store.Projects:    func() int { return len(st.Projects()) },
		store.Tasks:       func() int { return len(st.Tasks()) },
		store.Assignments: func() int { return len(st.Assignments()) },
		store.TimeLogs:    func() int { return len(st.TimeLogs()) },
	} {
		st.OnChange(col, func() {
			metrics.CollectionSize.WithLabelValues(string(col)).Set(float64(size()))
		})
	}

	// Remote data gateway (optional)
	gw := gateway.New(cfg.RemoteAPIURL, cfg.RemoteAPIToken, cfg.RemoteRate)
	if gw.Enabled() {
		log.Printf("🔗 Remote API configured: %s", cfg.RemoteAPIURL)
	} else {
		log.Println("⚠️  REMOTE_API_URL not set - running local-only")
	}

	// Notification feed
	feed := notify.NewFeed()

	// Services
	userService := services.NewUserService(db)
	dashboardService := services.NewDashboardService(gw)

	// Mirror existing accounts into the store so name resolution works
	// before the first admin mutation.
	if users, err := userService.List(); err == nil {
		st.ReplaceUsers(users)
	} else {
		log.Printf("⚠️  Failed to load user mirror: %v", err)
	}

	// JWT auth
	var jwtAuth *auth.LocalJWTAuth
	if cfg.JWTSecret != "" {
		jwtAuth, err = auth.NewLocalJWTAuth(cfg.JWTSecret, 0, 0)
		if err != nil {
			log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
		}
		log.Println("✅ Local JWT auth initialized")
	} else {
		if os.Getenv("ENVIRONMENT") == "production" {
			log.Fatal("❌ CRITICAL SECURITY ERROR: JWT_SECRET is required in production. Generate with: openssl rand -hex 32")
		}
		log.Println("⚠️  JWT_SECRET not set - auth disabled (development mode only)")
	}

	// Background jobs
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	snapshotJob := jobs.NewSnapshotFlushJob(st, clientCache, policyHolder)
	retentionJob := jobs.NewRetentionCleanupJob(feed, cfg.NotificationRetention)
	if err := scheduler.Register("snapshot-flush", cfg.SnapshotInterval, snapshotJob.Run); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := scheduler.Register("notification-retention", time.Hour, retentionJob.Run); err != nil {
		log.Fatalf("❌ %v", err)
	}
	scheduler.Start()

	// Hot-reload the sync policy file when it changes on disk
	go startPolicyFileWatcher(cfg.SyncPolicyPath, policyHolder)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "StudioDesk v1.0",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    20 * 1024 * 1024, // 20MB, spreadsheet uploads
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("studiodesk")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Load rate limiting configuration
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, ImportExport=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.ImportExportMax,
	)

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Global API rate limiter
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Every data route reads the store through the request scope; the
	// provider is mounted once at the root of the tree.
	app.Use(middleware.AppDataProvider(st))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, gw)
	authHandler := handlers.NewLocalAuthHandler(userService, jwtAuth)
	userHandler := handlers.NewUserHandler(userService)
	clientHandler := handlers.NewClientHandler(gw, policyHolder, cfg.PageSize)
	projectHandler := handlers.NewProjectHandler()
	taskHandler := handlers.NewTaskHandler(feed, cfg.PageSize)
	assignmentHandler := handlers.NewAssignmentHandler(feed)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	notificationHandler := handlers.NewNotificationHandler(feed)

	// Routes
	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", middleware.LocalAuthMiddleware(jwtAuth), authHandler.Me)
	authGroup.Post("/logout", middleware.LocalAuthMiddleware(jwtAuth), authHandler.Logout)

	protected := api.Group("", middleware.LocalAuthMiddleware(jwtAuth))

	sheetLimiter := middleware.ImportExportRateLimiter(rateLimitConfig)

	clients := protected.Group("/clients")
	clients.Get("/", clientHandler.List)
	clients.Post("/", clientHandler.Create)
	clients.Get("/export", sheetLimiter, clientHandler.Export)
	clients.Post("/import", sheetLimiter, clientHandler.Import)
	clients.Get("/sync-status", clientHandler.SyncStatus)
	clients.Get("/:id", clientHandler.Get)
	clients.Put("/:id", clientHandler.Update)
	clients.Patch("/:id", clientHandler.Patch)
	clients.Delete("/:id", clientHandler.Delete)

	projects := protected.Group("/projects")
	projects.Get("/", projectHandler.List)
	projects.Post("/", projectHandler.Create)
	projects.Get("/:id", projectHandler.Get)
	projects.Put("/:id", projectHandler.Update)
	projects.Patch("/:id", projectHandler.Patch)
	projects.Delete("/:id", projectHandler.Delete)

	tasks := protected.Group("/tasks")
	tasks.Get("/", taskHandler.List)
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/export", sheetLimiter, taskHandler.Export)
	tasks.Post("/import", sheetLimiter, taskHandler.Import)
	tasks.Get("/:id", taskHandler.Get)
	tasks.Put("/:id", taskHandler.Update)
	tasks.Delete("/:id", taskHandler.Delete)

	// Historical alias: the task sheet download predates the /tasks prefix
	// and some callers still use the bare path.
	protected.Get("/export", sheetLimiter, taskHandler.Export)

	assignments := protected.Group("/assignments")
	assignments.Get("/", assignmentHandler.List)
	assignments.Post("/", assignmentHandler.Create)
	assignments.Delete("/", assignmentHandler.Delete)

	protected.Get("/dashboard/stats", dashboardHandler.Stats)
	protected.Get("/notifications", notificationHandler.List)

	admin := protected.Group("/admin", middleware.AdminMiddleware())
	admin.Get("/users", userHandler.List)
	admin.Post("/users", userHandler.Create)
	admin.Put("/users/:id", userHandler.Update)
	admin.Delete("/users/:id", userHandler.Delete)

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("🕐 Background jobs: snapshot flush (every %v), notification retention (hourly)", cfg.SnapshotInterval)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		// Stop background jobs
		scheduler.Stop()

		// Final snapshot so nothing mutated since the last flush is lost
		snapshotJob.Run()

		// Shutdown Fiber
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// startPolicyFileWatcher watches the sync policy file and hot-swaps the
// active policy when it changes
func startPolicyFileWatcher(filePath string, holder *config.PolicyHolder) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️  Failed to create file watcher: %v", err)
		return
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		log.Printf("⚠️  Failed to get absolute path for %s: %v", filePath, err)
		watcher.Close()
		return
	}

	// Watch the directory containing the file (more reliable than watching the file directly)
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️  Failed to watch directory %s: %v", dir, err)
		watcher.Close()
		return
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", filePath)

	// Debounce timer to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}

				debounceTimer = time.AfterFunc(debounceDuration, func() {
					log.Printf("🔄 Detected changes in %s, reloading sync policy...", filePath)

					policy, err := config.LoadSyncPolicy(filePath)
					if err != nil {
						log.Printf("❌ Failed to reload sync policy (keeping current): %v", err)
						return
					}
					holder.Set(policy)
					log.Printf("✅ Sync policy reloaded from %s", filePath)
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  File watcher error: %v", err)
		}
	}
}
