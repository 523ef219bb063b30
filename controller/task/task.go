package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrtracker/controller/respond"
	"hrtracker/dto"
	"hrtracker/services"
)

// TaskController registers the task tree routes.
func TaskController(router gin.IRouter, tasks *services.TaskService, auth, idempotent gin.HandlerFunc) {
	router.POST("/task", auth, idempotent, func(c *gin.Context) {
		CreateTask(c, tasks)
	})
	router.GET("/task/:taskId", auth, func(c *gin.Context) {
		GetTask(c, tasks)
	})
	router.GET("/task/:taskId/subtasks", auth, func(c *gin.Context) {
		ListSubtasks(c, tasks)
	})
	router.PATCH("/task/:taskId", auth, func(c *gin.Context) {
		EditTask(c, tasks)
	})
	router.PUT("/task/:taskId/state", auth, func(c *gin.Context) {
		ChangeState(c, tasks)
	})
	router.PUT("/task/:taskId/order", auth, func(c *gin.Context) {
		Reorder(c, tasks)
	})
	router.PUT("/task/:taskId/board", auth, func(c *gin.Context) {
		MoveToBoard(c, tasks)
	})
	router.DELETE("/task", auth, func(c *gin.Context) {
		DeleteTasks(c, tasks)
	})
}

func CreateTask(c *gin.Context, tasks *services.TaskService) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	task, err := tasks.Create(c.Request.Context(), respond.Actor(c), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

func GetTask(c *gin.Context, tasks *services.TaskService) {
	task, err := tasks.Get(c.Request.Context(), respond.Actor(c), c.Param("taskId"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func ListSubtasks(c *gin.Context, tasks *services.TaskService) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.BadInput(c, err)
		return
	}
	page, err := tasks.ListByParent(c.Request.Context(), respond.Actor(c), c.Param("taskId"), q)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func EditTask(c *gin.Context, tasks *services.TaskService) {
	var req dto.EditTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	task, err := tasks.Edit(c.Request.Context(), respond.Actor(c), c.Param("taskId"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func ChangeState(c *gin.Context, tasks *services.TaskService) {
	var req dto.ChangeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	task, err := tasks.ChangeState(c.Request.Context(), respond.Actor(c), c.Param("taskId"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func Reorder(c *gin.Context, tasks *services.TaskService) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	task, err := tasks.Reorder(c.Request.Context(), respond.Actor(c), c.Param("taskId"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func MoveToBoard(c *gin.Context, tasks *services.TaskService) {
	var req dto.MoveToBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	task, err := tasks.MoveToBoard(c.Request.Context(), respond.Actor(c), c.Param("taskId"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTasks(c *gin.Context, tasks *services.TaskService) {
	var req dto.DeleteTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	if err := tasks.Delete(c.Request.Context(), respond.Actor(c), req); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
