package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskStatus map[string]backlite.TaskStatus

func (f fakeTaskStatus) Status(_ context.Context, id string) (backlite.TaskStatus, error) {
	if id == "broken" {
		return backlite.TaskStatusNotFound, errors.New("queue unavailable")
	}
	status, ok := f[id]
	if !ok {
		return backlite.TaskStatusNotFound, nil
	}
	return status, nil
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	controller := NewTasksController(fakeTaskStatus{
		"a": backlite.TaskStatusPending,
		"b": backlite.TaskStatusSuccess,
	})
	router := gin.New()
	router.GET("/tasks/:id/", controller.GetTaskStatus)

	tests := []struct {
		id         string
		wantCode   int
		wantStatus string
		finished   bool
	}{
		{"a", http.StatusOK, "pending", false},
		{"b", http.StatusOK, "success", true},
		{"missing", http.StatusNotFound, "", false},
		{"broken", http.StatusInternalServerError, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/"+tt.id+"/", nil))

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantStatus != "" {
				body := decode[TaskStatusResponse](t, w)
				assert.Equal(t, tt.id, body.ID)
				assert.Equal(t, tt.wantStatus, body.Status)
				assert.Equal(t, tt.finished, body.Finished)
			}
		})
	}
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "running", taskStatusToString(backlite.TaskStatusRunning))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", taskStatusToString(backlite.TaskStatusNotFound))
}
