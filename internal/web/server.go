// Package web serves the SnapScout pages and the voice websocket.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	orchestration "github.com/koscakluka/snapscout/core"
	"github.com/koscakluka/snapscout/core/agents"
	"github.com/koscakluka/snapscout/core/intents"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	router *gin.Engine

	agents            agents.Selector
	tagger            *intents.Tagger
	dispatcherOptions []orchestration.DispatcherOption
	allowedOrigins    []string

	upgrader websocket.Upgrader

	sessionsMu sync.Mutex
	sessions   map[string]*session
}

type ServerOption func(*Server)

// WithAgents sets the agents every websocket session dispatches to.
func WithAgents(selector agents.Selector) ServerOption {
	return func(s *Server) { s.agents = selector }
}

// WithTagger sets the tagger applied to final segments that arrive without
// an intent.
func WithTagger(tagger *intents.Tagger) ServerOption {
	return func(s *Server) { s.tagger = tagger }
}

// WithDispatcherOptions adds options to the dispatcher of every session.
func WithDispatcherOptions(opts ...orchestration.DispatcherOption) ServerOption {
	return func(s *Server) { s.dispatcherOptions = append(s.dispatcherOptions, opts...) }
}

// WithAllowedOrigins limits CORS and websocket origins. "*" allows any.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		agents:         agents.NewRegistry(),
		allowedOrigins: []string{"*"},
		sessions:       map[string]*session{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tagger == nil {
		s.tagger = intents.NewTagger()
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(s.corsConfig()))
	router.Use(loggingMiddleware())

	// Route on the escaped path so search terms containing slashes still
	// match a single parameter.
	router.UseRawPath = true
	router.UnescapePathValues = true

	router.SetHTMLTemplate(parseTemplates())
	router.StaticFS("/static", staticFiles())

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/"+defaultCategory)
	})
	for _, category := range Categories {
		router.GET("/"+category, func(c *gin.Context) { renderCategory(c, category) })
	}
	router.GET("/search/:searchInput", s.getSearch)
	router.POST("/search", s.postSearch)

	router.GET("/healthz", s.getHealth)
	router.GET("/api/schema/segment", s.getSegmentSchema)
	router.GET("/ws", s.serveWebsocket)

	router.NoRoute(renderNotFound)
	return router
}

func (s *Server) corsConfig() cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(s.allowedOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = s.allowedOrigins
	}
	return config
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.allowedOrigins, "*") {
		return true
	}
	return slices.Contains(s.allowedOrigins, origin)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done, then shuts down and closes open
// voice sessions.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer.RegisterOnShutdown(s.closeSessions)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("snapscout server starting", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) addSession(sess *session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[sess.id] = sess
}

func (s *Server) removeSession(sess *session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, sess.id)
}

func (s *Server) closeSessions() {
	s.sessionsMu.Lock()
	open := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.sessionsMu.Unlock()

	for _, sess := range open {
		sess.close()
	}
}
