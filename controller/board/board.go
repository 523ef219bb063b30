package board

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrtracker/controller/respond"
	"hrtracker/dto"
	"hrtracker/services"
)

// BoardController registers the board, state and board listing routes.
func BoardController(router gin.IRouter, boards *services.BoardService, tasks *services.TaskService, auth, idempotent gin.HandlerFunc) {
	router.POST("/board", auth, idempotent, func(c *gin.Context) {
		CreateBoard(c, boards)
	})
	router.GET("/board/:boardId", auth, func(c *gin.Context) {
		GetBoard(c, boards)
	})
	router.PUT("/board/:boardId/archive", auth, func(c *gin.Context) {
		SetArchived(c, boards, true)
	})
	router.PUT("/board/:boardId/restore", auth, func(c *gin.Context) {
		SetArchived(c, boards, false)
	})
	router.POST("/board/:boardId/state", auth, func(c *gin.Context) {
		AddState(c, boards)
	})
	router.PUT("/state/:stateId", auth, func(c *gin.Context) {
		UpdateState(c, boards)
	})
	router.DELETE("/state/:stateId", auth, func(c *gin.Context) {
		DeleteState(c, boards)
	})
	router.GET("/board/:boardId/tasks", auth, func(c *gin.Context) {
		ListTasks(c, tasks)
	})
}

func CreateBoard(c *gin.Context, boards *services.BoardService) {
	var req dto.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	board, err := boards.CreateBoard(c.Request.Context(), respond.Actor(c), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Board created successfully",
		"board":   board,
	})
}

func GetBoard(c *gin.Context, boards *services.BoardService) {
	board, err := boards.GetBoard(c.Request.Context(), respond.Actor(c), c.Param("boardId"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func SetArchived(c *gin.Context, boards *services.BoardService, archived bool) {
	var board *dto.BoardView
	var err error
	if archived {
		board, err = boards.Archive(c.Request.Context(), respond.Actor(c), c.Param("boardId"))
	} else {
		board, err = boards.Restore(c.Request.Context(), respond.Actor(c), c.Param("boardId"))
	}
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func AddState(c *gin.Context, boards *services.BoardService) {
	var req dto.AddStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	state, err := boards.AddState(c.Request.Context(), respond.Actor(c), c.Param("boardId"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

func UpdateState(c *gin.Context, boards *services.BoardService) {
	var req dto.UpdateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadInput(c, err)
		return
	}
	state, err := boards.UpdateState(c.Request.Context(), respond.Actor(c), c.Param("stateId"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func DeleteState(c *gin.Context, boards *services.BoardService) {
	if err := boards.DeleteState(c.Request.Context(), respond.Actor(c), c.Param("stateId")); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "State deleted successfully"})
}

func ListTasks(c *gin.Context, tasks *services.TaskService) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.BadInput(c, err)
		return
	}
	page, err := tasks.ListByBoard(c.Request.Context(), respond.Actor(c), c.Param("boardId"), q)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
