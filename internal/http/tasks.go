package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// TasksController reports on queued background tasks.
type TasksController struct {
	tasks TaskStatusReader
}

// NewTasksController creates a new TasksController.
func NewTasksController(tasks TaskStatusReader) *TasksController {
	return &TasksController{tasks: tasks}
}

// TaskStatusResponse is the body of GET /tasks/:id/. Finished is true once
// the queue will not run the task again.
type TaskStatusResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Finished bool   `json:"finished"`
}

var taskStatusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending:  "pending",
	backlite.TaskStatusRunning:  "running",
	backlite.TaskStatusSuccess:  "success",
	backlite.TaskStatusFailure:  "failure",
	backlite.TaskStatusNotFound: "not_found",
}

// GetTaskStatus handles GET /tasks/:id/
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	taskID := c.Param("id")
	status, err := tc.tasks.Status(ctx, taskID)
	switch {
	case err != nil:
		respondInternalError(c, err, "task status")
	case status == backlite.TaskStatusNotFound:
		respondNotFound(c, "task")
	default:
		c.JSON(http.StatusOK, TaskStatusResponse{
			ID:       taskID,
			Status:   taskStatusToString(status),
			Finished: status == backlite.TaskStatusSuccess || status == backlite.TaskStatusFailure,
		})
	}
}

func taskStatusToString(status backlite.TaskStatus) string {
	if name, ok := taskStatusNames[status]; ok {
		return name
	}
	return "unknown"
}
