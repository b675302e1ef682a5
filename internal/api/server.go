// Package api exposes the workflow service over HTTP with gin. Handlers stay
// thin: decode, call the service, map sentinel errors to status codes.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orderDeliveryManagement/internal/auth"
	"orderDeliveryManagement/internal/workflow"
	"orderDeliveryManagement/models"
	"orderDeliveryManagement/repository"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	svc *workflow.Service
	log zerolog.Logger
}

func NewServer(svc *workflow.Service, log zerolog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(jwtSecret string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", auth.Middleware(jwtSecret))

	orders := api.Group("/orders", auth.RequireRole(models.RoleCustomer, models.RoleAdmin))
	{
		orders.POST("", s.createOrder)
		orders.GET("", s.listOrders)
		orders.GET("/:id", s.getOrder)
		orders.POST("/:id/cancel", s.cancelOrder)
	}
	api.POST("/assignments/:id/confirm", auth.RequireRole(models.RoleCustomer), s.confirmDelivery)

	notifications := api.Group("/notifications")
	{
		notifications.GET("", s.listNotifications)
		notifications.POST("/:id/read", s.markNotificationRead)
		notifications.POST("/read-all", s.markAllNotificationsRead)
		notifications.DELETE("/:id", s.deleteNotification)
		notifications.POST("/:id/action", s.actOnNotification)
	}

	driver := api.Group("/driver", auth.RequireRole(models.RoleDriver))
	{
		driver.GET("/assignments", s.listAssignments)
		driver.POST("/assignments/:id/accept", s.acceptAssignment)
		driver.POST("/assignments/:id/reject", s.rejectAssignment)
		driver.POST("/assignments/:id/complete", s.completeAssignment)

		driver.GET("/calendar", s.calendar)
		driver.POST("/calendar/transfer", s.transferUndelivered)
		driver.GET("/days/:id", s.deliveryDay)
		driver.PUT("/days/:id", s.updateDeliveryDay)
		driver.POST("/routes", s.addRoute)
		driver.POST("/days/:id/routes/:routeID/status", s.advanceRoute)

		driver.GET("/invoices", s.driverInvoices)
		driver.GET("/invoices/:id", s.driverInvoice)

		driver.GET("/availability", s.getAvailability)
		driver.PUT("/availability", s.putAvailability)
	}

	admin := api.Group("/admin", auth.RequireRole(models.RoleAdmin))
	{
		admin.POST("/orders/:id/assign", s.assignOrder)
		admin.PUT("/orders/:id/status", s.setOrderStatus)
		admin.GET("/invoices", s.allInvoices)
		admin.POST("/invoices/:id/regenerate", s.regenerateInvoice)
		admin.PUT("/invoices/:id/status", s.setInvoiceStatus)
		admin.POST("/drivers", s.registerDriver)
		admin.GET("/drivers", s.listDrivers)
		admin.PUT("/drivers/:id/active", s.setDriverActive)
	}

	return r
}

// respondError maps the workflow sentinel errors to HTTP status codes.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDuplicateAssignment),
		errors.Is(err, models.ErrInvalidDriver),
		errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func principal(c *gin.Context) *auth.Principal {
	p, _ := auth.FromGin(c)
	return p
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// listParams parses the notification list filter from the query string.
func listParams(c *gin.Context) repository.ListNotificationsParams {
	var p repository.ListNotificationsParams
	p.Limit, p.Offset = pagination(c)
	if v, ok := c.GetQuery("is_read"); ok {
		b := v == "true" || v == "1"
		p.IsRead = &b
	}
	if v, ok := c.GetQuery("type"); ok {
		t := models.NotificationType(v)
		p.Type = &t
	}
	return p
}
