package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listNotifications(c *gin.Context) {
	p := principal(c)
	list, err := s.svc.Notifications(c.Request.Context(), p.UserID, listParams(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) markNotificationRead(c *gin.Context) {
	p := principal(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.MarkNotificationRead(c.Request.Context(), id, p.UserID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	p := principal(c)
	n, err := s.svc.MarkAllNotificationsRead(c.Request.Context(), p.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}

func (s *Server) deleteNotification(c *gin.Context) {
	p := principal(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteNotification(c.Request.Context(), id, p.UserID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) actOnNotification(c *gin.Context) {
	p := principal(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}
	n, err := s.svc.ActOnNotification(c.Request.Context(), id, p.UserID, in.Action)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": n})
}
