package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/martijn/cmdgate/internal/api/dto"
	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/repository"
	"github.com/martijn/cmdgate/internal/core/service"
)

type HistoryHandler struct {
	executionService *service.ExecutionService
}

func NewHistoryHandler(executionService *service.ExecutionService) *HistoryHandler {
	return &HistoryHandler{
		executionService: executionService,
	}
}

// GetHistory handles GET /history: the in-memory history in completion
// order.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	entries := h.executionService.History()

	resp := dto.HistoryResponse{
		Items: make([]dto.ExecutionResponse, len(entries)),
		Count: len(entries),
	}
	for i, entry := range entries {
		resp.Items[i] = toExecutionResponse(entry)
	}

	c.JSON(http.StatusOK, resp)
}

// GetAnalysis handles GET /history/analysis.
func (h *HistoryHandler) GetAnalysis(c *gin.Context) {
	analysis := h.executionService.Analyze()

	resp := dto.AnalysisResponse{
		TotalCount:        analysis.TotalCount,
		SuccessRate:       analysis.SuccessRate,
		AverageDurationMs: analysis.AverageDurationMs,
		TopCommands:       make([]dto.CommandCount, len(analysis.TopCommands)),
		RecentFailures:    make([]dto.ExecutionResponse, len(analysis.RecentFailures)),
	}
	for i, cc := range analysis.TopCommands {
		resp.TopCommands[i] = dto.CommandCount{Command: cc.Command, Count: cc.Count}
	}
	for i, failure := range analysis.RecentFailures {
		resp.RecentFailures[i] = toExecutionResponse(failure)
	}

	c.JSON(http.StatusOK, resp)
}

// ListExecutions handles GET /executions: the sqlite archive with status
// filtering and pagination.
func (h *HistoryHandler) ListExecutions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	filter := repository.ExecutionFilter{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	if status := c.Query("status"); status != "" {
		if status != string(domain.ExecutionStatusSuccess) && status != string(domain.ExecutionStatusFailed) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad Request",
				Message: fmt.Sprintf("invalid status: %s", status),
				Code:    http.StatusBadRequest,
			})
			return
		}
		filter.Status = domain.ExecutionStatus(status)
	}

	records, err := h.executionService.ListArchived(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal Server Error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	count, _ := h.executionService.CountArchived(c.Request.Context(), filter)
	totalPages := 0
	if perPage > 0 {
		totalPages = (count + perPage - 1) / perPage
	}

	resp := dto.ExecutionListResponse{
		Items: make([]dto.ExecutionRecordResponse, len(records)),
		Pagination: dto.PaginationInfo{
			Total:      count,
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
		},
	}
	for i, record := range records {
		resp.Items[i] = toExecutionRecordResponse(record)
	}

	c.JSON(http.StatusOK, resp)
}

// GetExecution handles GET /executions/:id.
func (h *HistoryHandler) GetExecution(c *gin.Context) {
	id := c.Param("id")

	record, err := h.executionService.GetArchived(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not Found",
			Message: fmt.Sprintf("Execution not found: %s", id),
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, toExecutionRecordResponse(record))
}

func toExecutionRecordResponse(record *domain.ExecutionRecord) dto.ExecutionRecordResponse {
	return dto.ExecutionRecordResponse{
		ID:         record.ID,
		Command:    record.Command,
		Status:     string(record.Status),
		ExitCode:   record.ExitCode,
		Stdout:     record.Stdout,
		Stderr:     record.Stderr,
		DurationMs: record.DurationMs,
		Killed:     record.Killed,
		PID:        record.PID,
		StartTime:  record.StartTime,
		EndTime:    record.EndTime,
	}
}
