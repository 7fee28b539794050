package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"collab-todo/internal/realtime"
	"collab-todo/internal/repository"
	"collab-todo/internal/service"
)

// ConnectLinker builds the external-chat linking URL shown to the user.
type ConnectLinker interface {
	ConnectLink(userID uint) string
}

// Server exposes the collaboration API and the realtime event stream.
type Server struct {
	router   *gin.Engine
	userRepo *repository.UserRepository
	todoSvc  *service.TodoService
	sharing  *service.SharingService
	hub      *realtime.Hub
	linker   ConnectLinker
}

func NewServer(
	userRepo *repository.UserRepository,
	todoSvc *service.TodoService,
	sharing *service.SharingService,
	hub *realtime.Hub,
	linker ConnectLinker,
) *Server {
	router := gin.Default()

	s := &Server{
		router:   router,
		userRepo: userRepo,
		todoSvc:  todoSvc,
		sharing:  sharing,
		hub:      hub,
		linker:   linker,
	}

	api := router.Group("/api")
	api.Use(s.authRequired())
	{
		api.GET("/me", s.handleMe)
		api.GET("/events", s.handleEvents)

		api.POST("/todos", s.handleCreateTodo)
		api.GET("/todos", s.handleListTodos)
		api.PATCH("/todos/:id", s.handleUpdateTodo)
		api.DELETE("/todos/:id", s.handleDeleteTodo)

		api.POST("/todos/share", s.handleShare)
		api.POST("/todos/:id/invite", s.handleInvite)
		api.POST("/todos/join/:token", s.handleJoin)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
