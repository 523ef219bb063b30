package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrtracker/controller/respond"
	"hrtracker/services"
)

// SubscriptionController registers the subscriber routes.
func SubscriptionController(router gin.IRouter, subs *services.SubscriberService, auth gin.HandlerFunc) {
	router.GET("/task/:taskId/subscribers", auth, func(c *gin.Context) {
		list, err := subs.List(c.Request.Context(), respond.Actor(c), c.Param("taskId"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
	router.POST("/task/:taskId/subscription", auth, func(c *gin.Context) {
		list, err := subs.Subscribe(c.Request.Context(), respond.Actor(c), c.Param("taskId"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
	router.DELETE("/task/:taskId/subscription", auth, func(c *gin.Context) {
		if err := subs.Unsubscribe(c.Request.Context(), respond.Actor(c), c.Param("taskId")); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed successfully"})
	})
	router.DELETE("/project/:projectId/member/:employeeId/subscriptions", auth, func(c *gin.Context) {
		n, err := subs.RemoveMember(c.Request.Context(), respond.Actor(c), c.Param("projectId"), c.Param("employeeId"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"released": n})
	})
}
