package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrtracker/controller/respond"
	"hrtracker/dto"
	"hrtracker/services"
)

// HistoryController registers the action ledger routes.
func HistoryController(router gin.IRouter, ledger *services.HistoryService, auth gin.HandlerFunc) {
	router.GET("/task/:taskId/history", auth, func(c *gin.Context) {
		rows, err := ledger.List(c.Request.Context(), respond.Actor(c), c.Param("taskId"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})
	router.POST("/task/:taskId/comment", auth, func(c *gin.Context) {
		var req dto.CommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadInput(c, err)
			return
		}
		row, err := ledger.RecordComment(c.Request.Context(), respond.Actor(c), c.Param("taskId"), req)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	})
	router.POST("/task/:taskId/timetrack", auth, func(c *gin.Context) {
		var req dto.TimeTrackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadInput(c, err)
			return
		}
		row, err := ledger.RecordTimeTracked(c.Request.Context(), respond.Actor(c), c.Param("taskId"), req)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	})
	router.DELETE("/comment/:commentId", auth, func(c *gin.Context) {
		if err := ledger.ForgetComment(c.Request.Context(), respond.Actor(c), c.Param("commentId")); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Comment history removed"})
	})
}
