package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/martijn/cmdgate/internal/api/dto"
	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/engine"
	"github.com/martijn/cmdgate/internal/core/service"
)

type ExecuteHandler struct {
	executionService *service.ExecutionService
}

func NewExecuteHandler(executionService *service.ExecutionService) *ExecuteHandler {
	return &ExecuteHandler{
		executionService: executionService,
	}
}

// Execute handles POST /executions. It blocks until the command
// completes (or is killed by the timeout watchdog) and returns the full
// result; a non-zero exit is still a 200.
func (h *ExecuteHandler) Execute(c *gin.Context) {
	var req dto.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	result, err := h.executionService.Run(c.Request.Context(), domain.ExecutionRequest{
		Command:   req.Command,
		Workdir:   req.Workdir,
		TimeoutMs: req.TimeoutMs,
		Env:       req.Env,
		Shell:     req.Shell,
	})
	if err != nil {
		var validationErr *engine.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:       "Validation Failed",
				Message:     validationErr.Result.Reason,
				Code:        http.StatusBadRequest,
				Suggestions: validationErr.Result.Suggestions,
			})
			return
		}

		var spawnErr *engine.SpawnError
		if errors.As(err, &spawnErr) {
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
				Error:   "Spawn Failed",
				Message: spawnErr.Error(),
				Code:    http.StatusUnprocessableEntity,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal Server Error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, toExecutionResponse(*result))
}

// Validate handles POST /validate, a dry run of the policy gate.
func (h *ExecuteHandler) Validate(c *gin.Context) {
	var req dto.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	vr := h.executionService.Validate(req.Command)
	c.JSON(http.StatusOK, dto.ValidationResponse{
		Valid:       vr.Valid,
		Reason:      vr.Reason,
		Suggestions: vr.Suggestions,
	})
}

func toExecutionResponse(res domain.ExecutionResult) dto.ExecutionResponse {
	return dto.ExecutionResponse{
		Command:    res.Command,
		ExitCode:   res.ExitCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		DurationMs: res.DurationMs,
		Killed:     res.Killed,
		PID:        res.PID,
	}
}
