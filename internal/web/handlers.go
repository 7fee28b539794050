package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"collab-todo/internal/service"
)

func (s *Server) handleMe(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"fullName":    user.FullName,
		"linked":      user.TelegramChatID != nil,
		"connectLink": s.linker.ConnectLink(user.ID),
	})
}

type createTodoRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	RemindAt     *string `json:"remindAt"`
	IsRepeatable bool    `json:"isRepeatable"`
	RepeatDays   string  `json:"repeatDays"`
}

func (s *Server) handleCreateTodo(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	input := service.TodoInput{
		Title:        req.Title,
		Description:  req.Description,
		IsRepeatable: req.IsRepeatable,
		RepeatDays:   req.RepeatDays,
	}
	if req.RemindAt != nil && *req.RemindAt != "" {
		at, err := time.Parse(time.RFC3339, *req.RemindAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "remindAt must be RFC 3339"})
			return
		}
		input.RemindAt = &at
	}

	todo, err := s.todoSvc.Create(c.Request.Context(), currentUser(c).ID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (s *Server) handleListTodos(c *gin.Context) {
	todos, err := s.todoSvc.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
	RemindAt    *string `json:"remindAt"` // "" clears the reminder
	RepeatDays  *string `json:"repeatDays"`
}

func (s *Server) handleUpdateTodo(c *gin.Context) {
	todoID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	update := service.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		RepeatDays:  req.RepeatDays,
	}
	if req.RemindAt != nil {
		update.SetRemindAt = true
		if *req.RemindAt != "" {
			at, err := time.Parse(time.RFC3339, *req.RemindAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "remindAt must be RFC 3339"})
				return
			}
			update.RemindAt = &at
		}
	}

	todo, err := s.todoSvc.Update(c.Request.Context(), currentUser(c).ID, todoID, update)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (s *Server) handleDeleteTodo(c *gin.Context) {
	todoID, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.todoSvc.Delete(c.Request.Context(), currentUser(c).ID, todoID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "todo deleted"})
}

type shareRequest struct {
	TodoID  uint   `json:"todoId" binding:"required"`
	Email   string `json:"email" binding:"required"`
	CanEdit bool   `json:"canEdit"`
}

func (s *Server) handleShare(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	share, err := s.sharing.ShareByEmail(c.Request.Context(), req.TodoID, currentUser(c).ID, req.Email, req.CanEdit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "todo shared", "share": share})
}

type inviteRequest struct {
	CanEdit *bool `json:"canEdit"`
}

func (s *Server) handleInvite(c *gin.Context) {
	todoID, ok := pathID(c)
	if !ok {
		return
	}

	// The body is optional: no body (or no canEdit field) means "return the
	// current invite unchanged".
	var req inviteRequest
	_ = c.ShouldBindJSON(&req)

	invite, err := s.sharing.GenerateOrUpdateInvite(c.Request.Context(), todoID, currentUser(c).ID, req.CanEdit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      invite.Token,
		"canEdit":    invite.CanEdit,
		"usageCount": invite.UsageCount,
		"usageLimit": invite.UsageLimit,
	})
}

func (s *Server) handleJoin(c *gin.Context) {
	token := c.Param("token")

	todo, err := s.sharing.AcceptInvite(c.Request.Context(), token, currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invite accepted", "todo": todo})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps the service error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrInvalidTarget), errors.Is(err, service.ErrLimitReached):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
