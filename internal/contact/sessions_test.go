package contact

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Zachkp/portfolio/internal/mailer"
	"github.com/stretchr/testify/assert"
)

func TestSessionsGetReusesController(t *testing.T) {
	built := 0
	s := NewSessions(time.Minute, func() *Controller {
		built++
		return NewController(testSettings(time.Second), respondWith(http.StatusOK, "OK", nil))
	})

	a := s.Get("visitor-a")
	assert.Same(t, a, s.Get("visitor-a"))
	assert.NotSame(t, a, s.Get("visitor-b"))
	assert.Equal(t, 2, built)
	assert.Equal(t, 2, s.Len())
}

func TestSessionsViewDoesNotRegister(t *testing.T) {
	s := NewSessions(time.Minute, func() *Controller {
		return NewController(testSettings(time.Second), respondWith(http.StatusOK, "OK", nil))
	})

	fresh := s.View("visitor-a")
	assert.Equal(t, idleStatus, fresh.Status())
	assert.Zero(t, s.Len())

	a := s.Get("visitor-a")
	assert.Same(t, a, s.View("visitor-a"))
	assert.Equal(t, 1, s.Len())
}

func TestSessionsSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	release := make(chan struct{})
	defer close(release)

	s := NewSessions(10*time.Minute, func() *Controller {
		return NewController(testSettings(time.Minute), &fakeClient{handler: func(context.Context) (mailer.Response, error) {
			<-release
			return mailer.Response{Status: http.StatusOK}, nil
		}})
	})
	s.now = func() time.Time { return now }

	s.Get("idle")
	busy := s.Get("busy")
	fill(t, busy, FormData{Name: "Ann", Email: "ann@x.com", Message: "hi"})
	busy.Submit()

	now = now.Add(5 * time.Minute)
	s.Get("fresh")

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 2, s.Len())

	// The in-flight session survives; the fresh one is still within the TTL.
	assert.Same(t, busy, s.Get("busy"))
}

func TestSessionsRunStopsOnCancel(t *testing.T) {
	s := NewSessions(time.Minute, func() *Controller { return NewController(Settings{}, nil) })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
