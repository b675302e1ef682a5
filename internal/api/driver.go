package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderDeliveryManagement/internal/workflow"
	"orderDeliveryManagement/models"
)

// withDriver resolves the calling user's driver profile before running the
// handler body.
func (s *Server) withDriver(c *gin.Context, fn func(d *models.Driver)) {
	p := principal(c)
	d, err := s.svc.DriverForUser(c.Request.Context(), p.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	fn(d)
}

func (s *Server) listAssignments(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		var status *models.AssignmentStatus
		if v, ok := c.GetQuery("status"); ok {
			st := models.AssignmentStatus(v)
			status = &st
		}
		items, err := s.svc.AssignmentsForDriver(c.Request.Context(), d.ID, status)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignments": items})
	})
}

func (s *Server) acceptAssignment(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		a, err := s.svc.Accept(c.Request.Context(), id, d.ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignment": a})
	})
}

func (s *Server) rejectAssignment(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var in struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&in) // body optional, reason defaults
		a, err := s.svc.Reject(c.Request.Context(), id, d.ID, in.Reason)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignment": a})
	})
}

func (s *Server) completeAssignment(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		a, err := s.svc.Complete(c.Request.Context(), id, d.ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignment": a})
	})
}

func (s *Server) calendar(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		from := c.Query("from")
		to := c.Query("to")
		days, err := s.svc.Calendar(c.Request.Context(), d.ID, from, to)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days})
	})
}

func (s *Server) transferUndelivered(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		var in struct {
			Date string `json:"date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
			return
		}
		result, err := s.svc.TransferUndelivered(c.Request.Context(), d.ID, in.Date)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

func (s *Server) deliveryDay(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		detail, err := s.svc.DeliveryDay(c.Request.Context(), id, d.ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	})
}

func (s *Server) updateDeliveryDay(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var in workflow.DeliveryDayUpdate
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		day, err := s.svc.UpdateDeliveryDay(c.Request.Context(), id, d.ID, in)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"day": day})
	})
}

func (s *Server) addRoute(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		var in struct {
			Date         string `json:"date" binding:"required"`
			AssignmentID *int64 `json:"assignment_id"`
			Notes        string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
			return
		}
		rt, err := s.svc.AddRoute(c.Request.Context(), d.ID, in.Date, in.AssignmentID, in.Notes)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"route": rt})
	})
}

func (s *Server) advanceRoute(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		dayID, ok := pathID(c, "id")
		if !ok {
			return
		}
		routeID, ok := pathID(c, "routeID")
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
		if err := s.svc.AdvanceRoute(c.Request.Context(), routeID, d.ID, dayID, models.RouteStatus(in.Status)); err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": in.Status})
	})
}

func (s *Server) driverInvoices(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		limit, offset := pagination(c)
		items, err := s.svc.DriverInvoices(c.Request.Context(), d.ID, limit, offset)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invoices": items})
	})
}

func (s *Server) driverInvoice(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		inv, err := s.svc.InvoiceForDriver(c.Request.Context(), id, d.ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invoice": inv})
	})
}

func (s *Server) getAvailability(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		av, err := s.svc.Availability(c.Request.Context(), d.ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"availability": av})
	})
}

func (s *Server) putAvailability(c *gin.Context) {
	s.withDriver(c, func(d *models.Driver) {
		var in models.DriverAvailability
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		in.DriverID = d.ID
		if err := s.svc.SetAvailability(c.Request.Context(), &in); err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"availability": in})
	})
}
