package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionCookie = "contact_session"

// waitSlack lets Wait outlive the send timeout so the timer always settles first.
const waitSlack = 2 * time.Second

type contactRequest struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Message string `form:"message" json:"message"`
}

type fieldRequest struct {
	Field string `form:"field" json:"field" binding:"required"`
	Value string `form:"value" json:"value"`
}

func (s *server) setupContactRoutes(r *gin.Engine) {
	// HTMX contact form partial, prefilled from the visitor's session
	r.GET("/contact-form", func(c *gin.Context) {
		ctrl := s.viewSession(c)
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"data":   ctrl.Data(),
			"status": ctrl.Status(),
		})
	})

	r.GET("/contact/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.viewSession(c).Status())
	})

	r.POST("/contact/field", func(c *gin.Context) {
		var req fieldRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		field, err := contact.ParseField(req.Field)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctrl := s.contactSession(c)
		if err := ctrl.UpdateField(field, req.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		renderStatus(c, http.StatusOK, ctrl.Status())
	})

	var limiter gin.HandlerFunc
	if s.redis != nil {
		limiter = middleware.ContactRateLimiter(s.redis, s.cfg.Contact.RateLimit, s.cfg.Contact.RateWindow)
	} else {
		limiter = middleware.ContactRateLimiter(nil, 0, s.cfg.Contact.RateWindow)
	}

	// Handle contact form submission with HTMX or JSON
	r.POST("/contact", limiter, func(c *gin.Context) {
		ctrl := s.contactSession(c)
		if ctrl.Status().Sending() {
			renderStatus(c, http.StatusConflict, ctrl.Status())
			return
		}

		var req contactRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Field names are known, so UpdateField cannot fail here.
		_ = ctrl.UpdateField(contact.FieldName, req.Name)
		_ = ctrl.UpdateField(contact.FieldEmail, req.Email)
		_ = ctrl.UpdateField(contact.FieldMessage, req.Message)

		if !ctrl.Submit() {
			renderStatus(c, http.StatusConflict, ctrl.Status())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Contact.SendTimeout+waitSlack)
		defer cancel()
		status, err := ctrl.Wait(ctx)
		if err != nil {
			// The visitor went away; the attempt still settles in the background.
			logger.GetLogger().Debugw("Stopped waiting for contact attempt", "error", err)
		}

		// A sent message clears the fields, so HTMX swaps the whole form.
		if status.Phase == contact.PhaseSuccess && isHTMX(c) && !wantsJSON(c) {
			c.Header("HX-Retarget", "#contact-form")
			c.Header("HX-Reswap", "outerHTML")
			c.HTML(http.StatusOK, "contact.html", gin.H{
				"data":   ctrl.Data(),
				"status": status,
			})
			return
		}
		renderStatus(c, http.StatusOK, status)
	})
}

// contactSession returns the visitor's controller, issuing a session cookie
// on first contact.
func (s *server) contactSession(c *gin.Context) *contact.Controller {
	id, err := c.Cookie(sessionCookie)
	if err != nil {
		id = ""
	}
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		id = uuid.New().String()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, int(s.cfg.Contact.SessionTTL.Seconds()), "/", "", s.cfg.IsProduction(), true)
	}
	return s.sessions.Get(id)
}

// viewSession returns the visitor's controller for read-only routes. Without
// a valid session cookie it returns a fresh, unregistered controller and
// issues no cookie.
func (s *server) viewSession(c *gin.Context) *contact.Controller {
	id, err := c.Cookie(sessionCookie)
	if err != nil {
		id = ""
	}
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		id = ""
	}
	return s.sessions.View(id)
}

// renderStatus answers with JSON for API clients and an HTML fragment for
// HTMX and plain form posts.
func renderStatus(c *gin.Context, code int, status contact.FormStatus) {
	if wantsJSON(c) {
		c.JSON(code, status)
		return
	}
	c.HTML(code, "contact-status.html", gin.H{"status": status})
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		c.ContentType() == gin.MIMEJSON
}
