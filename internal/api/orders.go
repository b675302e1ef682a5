package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderDeliveryManagement/internal/workflow"
	"orderDeliveryManagement/models"
)

func (s *Server) createOrder(c *gin.Context) {
	p := principal(c)
	var in workflow.NewOrder
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	order, items, err := s.svc.CreateOrder(c.Request.Context(), p.UserID, in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "items": items})
}

func (s *Server) listOrders(c *gin.Context) {
	p := principal(c)
	orders, err := s.svc.OrdersForUser(c.Request.Context(), p.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) getOrder(c *gin.Context) {
	p := principal(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, items, err := s.svc.OrderForUser(c.Request.Context(), id, p.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

func (s *Server) cancelOrder(c *gin.Context) {
	p := principal(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := s.svc.CancelOrder(c.Request.Context(), id, p.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (s *Server) confirmDelivery(c *gin.Context) {
	p := principal(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Confirmed *bool `json:"confirmed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmed is required"})
		return
	}
	a, err := s.svc.ConfirmByCustomer(c.Request.Context(), id, p.UserID, *in.Confirmed)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": a})
}

func (s *Server) setOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	order, err := s.svc.SetOrderStatus(c.Request.Context(), id, models.OrderStatus(in.Status))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
