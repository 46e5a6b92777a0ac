package handler

import (
	"Go_Site/internal/dto"
	"Go_Site/internal/task"
	"Go_Site/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReconcileHandler exposes reconcile tasks to operators.
type ReconcileHandler struct {
	db *gorm.DB
}

// NewReconcileHandler builds a ReconcileHandler.
func NewReconcileHandler(db *gorm.DB) *ReconcileHandler {
	return &ReconcileHandler{db: db}
}

// List returns recent reconcile tasks.
func (h *ReconcileHandler) List(c *gin.Context) {
	var req dto.ListReconcileTasksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	tasks, err := task.ListReconcileTasks(c.Request.Context(), h.db, req.Status, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, tasks)
}
