package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/mailer"
	"github.com/Zachkp/portfolio/internal/middleware"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

//go:embed templates/*.html
var templatesFS embed.FS

// server wires the site routes to their collaborators.
type server struct {
	cfg      *config.Config
	store    *store.Store
	sessions *contact.Sessions
	admin    *adminArea
	redis    *redis.Client
	gatherer prometheus.Gatherer
}

func newServer(cfg *config.Config, st *store.Store, client mailer.Client, rdb *redis.Client, gatherer prometheus.Gatherer) *server {
	settings := contact.Settings{
		ServiceID:      cfg.Mail.ServiceID,
		TemplateID:     cfg.Mail.TemplateID,
		PublicKey:      cfg.Mail.PublicKey,
		RecipientName:  cfg.Contact.RecipientName,
		RecipientEmail: cfg.Contact.RecipientEmail,
		Timeout:        cfg.Contact.SendTimeout,
	}
	if !cfg.Mail.Configured() {
		logger.GetLogger().Errorw("Email service credentials are missing; the contact form will report a configuration error",
			"service_id_set", cfg.Mail.ServiceID != "",
			"template_id_set", cfg.Mail.TemplateID != "",
			"public_key_set", cfg.Mail.PublicKey != "")
	}

	return &server{
		cfg:   cfg,
		store: st,
		sessions: contact.NewSessions(cfg.Contact.SessionTTL, func() *contact.Controller {
			return contact.NewController(settings, client, contact.WithRecorder(st))
		}),
		admin:    newAdminArea(&cfg.Admin, st, cfg.IsProduction()),
		redis:    rdb,
		gatherer: gatherer,
	}
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(s.cfg.Server.AllowedOrigins))
	r.Use(s.admin.visitorTrackingMiddleware())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	r.Static("/static", "./static")

	// Home page route
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"owner":    OwnerName,
			"tagline":  Tagline,
			"about":    AboutMe,
			"projects": Projects,
			"skills":   Skills,
			"socials":  Socials,
			"sections": Sections,
		})
	})

	// Same content for clients rendering the page themselves
	r.GET("/api/portfolio", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"owner":    OwnerName,
			"tagline":  Tagline,
			"about":    AboutMe,
			"projects": Projects,
			"skills":   Skills,
			"socials":  Socials,
			"sections": Sections,
		})
	})

	r.GET("/resume", func(c *gin.Context) {
		c.FileAttachment(ResumePath, ResumeFilename)
	})

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	s.setupContactRoutes(r)
	s.admin.setupRoutes(r)

	return r
}

func (s *server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	status := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if s.redis != nil {
		checks["redis"] = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			// Rate limiting fails open, so redis is not fatal.
			checks["redis"] = err.Error()
		}
	}
	checks["mail_configured"] = s.cfg.Mail.Configured()
	c.JSON(status, checks)
}

func main() {
	logger.InitLogger()
	defer logger.Close()
	log := logger.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("Failed to load configuration", "error", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatalw("Failed to open database", "path", cfg.Database.Path, "error", err)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := mailer.New(&cfg.Mail, reg)
	if err != nil {
		log.Fatalw("Failed to create message-send client", "error", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	srv := newServer(cfg, st, client, rdb, reg)
	go srv.sessions.Run(ctx, time.Minute)
	go srv.admin.runRetention(ctx, 24*time.Hour)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Portfolio listening", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Contact.SendTimeout+5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", "error", err)
	}
}
