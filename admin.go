// admin.go - privacy-conscious admin area over contact attempts and visitors
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminCookie = "admin_token"

type adminArea struct {
	token       string
	hashingSalt string
	username    string
	passHash    []byte
	secure      bool
	store       *store.Store
	log         *zap.SugaredLogger
}

func newAdminArea(cfg *config.AdminConfig, st *store.Store, production bool) *adminArea {
	log := logger.GetLogger()
	a := &adminArea{
		token:       generateAdminToken(),
		hashingSalt: generateAdminToken(),
		username:    cfg.Username,
		secure:      production,
		store:       st,
		log:         log,
	}

	// Default credentials for development only; config rejects them in production.
	if a.username == "" {
		a.username = "admin"
		log.Warn("Using default admin username. Set ADMIN_USERNAME.")
	}
	password := cfg.Password
	if password == "" {
		password = "admin123"
		log.Warn("Using default admin password. Set ADMIN_PASSWORD.")
	}
	a.passHash = hashAdminPassword(password)

	log.Infow("Admin access available", "path", "/admin/login")
	return a
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		logger.GetLogger().Fatalw("Failed to generate admin token", "error", err)
	}
	return hex.EncodeToString(bytes)
}

// hashAdminPassword accepts either a bcrypt hash or a plaintext password,
// which is hashed once at startup.
func hashAdminPassword(password string) []byte {
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return []byte(password)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.GetLogger().Fatalw("Failed to hash admin password", "error", err)
	}
	return hash
}

// hashIP hashes a client IP with the process salt. Consistent per IP for
// the life of the process only.
func (a *adminArea) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.hashingSalt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *adminArea) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *adminArea) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passHash, []byte(password)) == nil
	return userOK && passOK
}

// visitorTrackingMiddleware records page views with hashed IPs. Static
// assets, API calls, admin pages and DNT requests are skipped.
func (a *adminArea) visitorTrackingMiddleware() gin.HandlerFunc {
	skipped := []string{"/static/", "/admin", "/api/", "/contact", "/metrics", "/healthz", "/favicon", "/privacy"}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skipped {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		if c.Request.Method != http.MethodGet || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		hashed := a.hashIP(c.ClientIP())
		userAgent := c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.store.TrackVisitor(ctx, hashed, userAgent, path); err != nil {
				a.log.Errorw("Error recording visitor", "error", err)
			}
		}()
		c.Next()
	}
}

// runRetention deletes visitor rows past the retention window on start and
// then every interval.
func (a *adminArea) runRetention(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.store.CleanupVisitors(ctx, store.VisitorRetention); err != nil {
			a.log.Errorw("Error cleaning up old visitor data", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *adminArea) setupRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacy Policy",
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if a.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			c.SetSameSite(http.SameSiteStrictMode)
			c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", a.secure, true)
			a.log.Infow("Admin login successful", "client", a.hashIP(c.ClientIP()))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		a.log.Warnw("Failed admin login attempt", "client", a.hashIP(c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", a.secure, true)
		a.log.Infow("Admin logout", "client", a.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(a.authMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			a.log.Errorw("Error loading admin stats", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/attempts", func(c *gin.Context) {
		attempts, err := a.store.RecentAttempts(c.Request.Context(), 200)
		if err != nil {
			a.log.Errorw("Error loading contact attempts", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load contact attempts",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-attempts.html", gin.H{
			"attempts": attempts,
		})
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visitors, err := a.store.RecentVisitors(c.Request.Context(), 200)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := a.store.CleanupVisitors(c.Request.Context(), store.VisitorRetention)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": removed})
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		a.log.Infow("Admin stats exported", "client", a.hashIP(c.ClientIP()))
		c.JSON(http.StatusOK, stats)
	})
}
