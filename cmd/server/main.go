package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"guardian/internal/audit"
	"guardian/internal/auth"
	"guardian/internal/config"
	"guardian/internal/docker"
	"guardian/internal/envfile"
	"guardian/internal/events"
	"guardian/internal/handlers"
	"guardian/internal/middleware"
	"guardian/internal/notify"
	"guardian/internal/passwords"
	"guardian/internal/tasks"
	"guardian/internal/timezone"
	"guardian/internal/ws"
)

// npmBaseURL is the NPM admin API on the stack's internal network.
const npmBaseURL = "http://172.20.0.5:81"

func main() {
	cfg := config.Load()
	log.Printf("=== Guardian Hub Config UI ===")

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		log.Fatalf("❌ Could not open database: %v", err)
	}
	defer db.Close()

	if err := notify.InitSchema(db); err != nil {
		log.Fatalf("❌ Could not initialize notify schema: %v", err)
	}
	auditLog, err := audit.NewLog(db)
	if err != nil {
		log.Fatalf("❌ Could not initialize audit log: %v", err)
	}
	log.Printf("✅ Database connected (%s)", cfg.DBPath)

	bus := events.NewBus()
	auditLog.Attach(bus)

	dispatcher := notify.NewDispatcher(db, bus, nil)
	dispatcher.Start()
	defer dispatcher.Stop()

	store := envfile.NewStore(cfg.EnvFilePath)
	sessions := auth.NewRegistry()
	authCtrl := auth.NewController(store, sessions, bus, cfg.FactoryPasswordPath, cfg.SerialNumberPath)

	compose := docker.NewCompose(cfg.DockerBin, cfg.ComposeFilePath)
	orchestrator := tasks.NewOrchestrator(compose, bus, 2)

	tzManager := timezone.NewManager(store, orchestrator, cfg.ZoneinfoDir)
	pwManager := passwords.NewManager(store, compose, passwords.NewNPMClient(npmBaseURL), bus)

	hub := ws.NewHub(bus)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("GET /api/health", handlers.Health)
	mux.HandleFunc("POST /api/auth/login", loginLimiter.Limit(auth.Login(authCtrl)))
	mux.HandleFunc("POST /api/auth/reset-to-factory", loginLimiter.Limit(auth.ResetToFactory(authCtrl)))
	mux.HandleFunc("GET /api/auth/check", auth.Check(authCtrl))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout(authCtrl))

	// Session-protected endpoints
	mux.HandleFunc("POST /api/auth/change-password", auth.ChangePassword(authCtrl))
	mux.HandleFunc("GET /api/config", authCtrl.RequireSession(handlers.GetConfig(store)))
	mux.HandleFunc("GET /api/status/task/{taskId}", authCtrl.RequireSession(handlers.TaskStatus(orchestrator)))
	mux.HandleFunc("GET /api/timezone", authCtrl.RequireSession(handlers.GetTimezones(tzManager)))
	mux.HandleFunc("POST /api/timezone", authCtrl.RequireSession(handlers.UpdateTimezone(tzManager)))
	mux.HandleFunc("POST /api/password/pihole", authCtrl.RequireSession(handlers.UpdatePiholePassword(pwManager)))
	mux.HandleFunc("POST /api/password/wireguard", authCtrl.RequireSession(handlers.UpdateWireGuardPassword(pwManager)))
	mux.HandleFunc("POST /api/password/npm", authCtrl.RequireSession(handlers.UpdateNPMPassword(pwManager)))
	mux.HandleFunc("GET /api/audit", authCtrl.RequireSession(handlers.GetAuditLog(auditLog)))
	mux.HandleFunc("GET /api/notifications", authCtrl.RequireSession(handlers.ListNotificationServices(db)))
	mux.HandleFunc("POST /api/notifications", authCtrl.RequireSession(handlers.AddNotificationService(db)))
	mux.HandleFunc("DELETE /api/notifications/{id}", authCtrl.RequireSession(handlers.DeleteNotificationService(db)))
	mux.HandleFunc("GET /api/homepage/link", authCtrl.RequireSession(handlers.HomepageLink(store)))
	// Browser WebSocket clients cannot set an Authorization header, so the
	// token rides in a query parameter here.
	mux.HandleFunc("GET /api/ws", func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			header = "Bearer " + r.URL.Query().Get("token")
		}
		if !authCtrl.CheckAuth(header) {
			http.Error(w, `{"status":"error","message":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		hub.Handle(w, r)
	})

	// Static web UI
	mux.HandleFunc("/", handlers.StaticFiles(authCtrl, cfg.StaticDir))

	handler := middleware.CORS(middleware.Logging(mux))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Printf("🚀 Guardian Hub listening on port %s", cfg.Port)
		log.Printf("   Web UI:   http://localhost:%s/", cfg.Port)
		log.Printf("   API base: http://localhost:%s/api/", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Shutdown error: %v", err)
	}
}
