package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderDeliveryManagement/models"
)

func (s *Server) assignOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in struct {
		DriverID int64 `json:"driver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "driver_id is required"})
		return
	}
	a, err := s.svc.Assign(c.Request.Context(), orderID, in.DriverID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": a})
}

func (s *Server) allInvoices(c *gin.Context) {
	limit, offset := pagination(c)
	items, err := s.svc.AllInvoices(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": items})
}

func (s *Server) regenerateInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	inv, err := s.svc.RegeneratePDF(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) setInvoiceStatus(c *gin.Context) {
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
	inv, err := s.svc.SetInvoiceStatus(c.Request.Context(), id, models.InvoiceStatus(in.Status))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) registerDriver(c *gin.Context) {
	var in struct {
		UserID       int64  `json:"user_id" binding:"required"`
		Phone        string `json:"phone"`
		VehicleType  string `json:"vehicle_type"`
		VehiclePlate string `json:"vehicle_plate"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	d, err := s.svc.RegisterDriver(c.Request.Context(), in.UserID, in.Phone, in.VehicleType, in.VehiclePlate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"driver": d})
}

func (s *Server) listDrivers(c *gin.Context) {
	drivers, err := s.svc.ActiveDrivers(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

func (s *Server) setDriverActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}
	if err := s.svc.SetDriverActive(c.Request.Context(), id, *in.Active); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": *in.Active})
}
