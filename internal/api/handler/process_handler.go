package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/martijn/cmdgate/internal/api/dto"
	"github.com/martijn/cmdgate/internal/core/service"
)

type ProcessHandler struct {
	executionService *service.ExecutionService
}

func NewProcessHandler(executionService *service.ExecutionService) *ProcessHandler {
	return &ProcessHandler{
		executionService: executionService,
	}
}

// ListProcesses handles GET /processes: currently running processes in
// spawn order.
func (h *ProcessHandler) ListProcesses(c *gin.Context) {
	running := h.executionService.Running()

	resp := dto.ProcessListResponse{
		Items: make([]dto.ProcessResponse, len(running)),
		Count: len(running),
	}
	for i, info := range running {
		resp.Items[i] = dto.ProcessResponse{
			PID:       info.PID,
			Command:   info.Command,
			StartedAt: info.StartedAt,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// TerminateProcess handles DELETE /processes/:pid. Termination is
// requested, not awaited; the execution's own result reports the final
// outcome.
func (h *ProcessHandler) TerminateProcess(c *gin.Context) {
	pid, err := strconv.Atoi(c.Param("pid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid pid",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if !h.executionService.Terminate(pid) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not Found",
			Message: fmt.Sprintf("No running process with pid %d", pid),
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, dto.TerminateResponse{Terminated: 1})
}

// TerminateAll handles DELETE /processes.
func (h *ProcessHandler) TerminateAll(c *gin.Context) {
	count := h.executionService.TerminateAll()
	c.JSON(http.StatusOK, dto.TerminateResponse{Terminated: count})
}
