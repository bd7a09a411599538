package handler

import (
	"errors"
	"net/http"

	"github.com/aircnc/aircnc-server/internal/database"
	"github.com/aircnc/aircnc-server/internal/reservation"
	"github.com/aircnc/aircnc-server/internal/reservation/service"
	"github.com/aircnc/aircnc-server/internal/validation"
	"github.com/aircnc/aircnc-server/pkg/logger"
	"github.com/aircnc/aircnc-server/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterReservationRoutes mounts the reservation CRUD routes on r. Callers put
// authentication on r before calling.
func RegisterReservationRoutes(r gin.IRouter, svc *service.Service) {
	log := logger.Named("ReservationsHandler")

	fail := func(c *gin.Context, err error) {
		switch {
		case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrInvalidRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		default:
			log.Errorw("reservation request failed", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	}

	g := r.Group("/reservations")

	g.POST("", func(c *gin.Context) {
		var req reservation.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validation.AbortWithBindError(c, err)
			return
		}
		res, err := svc.Create(c.Request.Context(), middleware.UserID(c), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	})

	g.GET("", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	g.GET("/:id", func(c *gin.Context) {
		res, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	g.PATCH("/:id", func(c *gin.Context) {
		var req reservation.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			validation.AbortWithBindError(c, err)
			return
		}
		res, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		res, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
}
