package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/martijn/cmdgate/internal/core/engine"
	"github.com/martijn/cmdgate/internal/core/service"
	"github.com/martijn/cmdgate/internal/infrastructure/logger"
	"github.com/martijn/cmdgate/internal/infrastructure/sqlite"
)

type testEnv struct {
	router           *gin.Engine
	registry         *engine.Registry
	history          *engine.History
	executionService *service.ExecutionService
	authService      *service.AuthService
}

// setupTestEnv builds a router with all routes mounted and no auth
// middleware, backed by an in-memory archive.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.NewNop()
	registry := engine.NewRegistry()
	history := engine.NewHistory()
	validator := engine.NewValidator(nil, []string{"rm -rf", "sudo"}, 5, registry.Count)
	executor := engine.NewExecutor(engine.Options{
		DefaultTimeoutMs: 10000,
		DefaultWorkdir:   ".",
	}, validator, registry, history, log)

	executionService := service.NewExecutionService(
		executor, registry, history, sqlite.NewExecutionRepository(db), log,
	)
	authService := service.NewAuthService(sqlite.NewClientRepository(db), "test-signing-secret", "HS256")

	executeHandler := NewExecuteHandler(executionService)
	historyHandler := NewHistoryHandler(executionService)
	processHandler := NewProcessHandler(executionService)
	authHandler := NewAuthHandler(authService)

	router := gin.New()
	router.POST("/auth/token", authHandler.Token)
	router.POST("/executions", executeHandler.Execute)
	router.GET("/executions", historyHandler.ListExecutions)
	router.GET("/executions/:id", historyHandler.GetExecution)
	router.POST("/validate", executeHandler.Validate)
	router.GET("/history", historyHandler.GetHistory)
	router.GET("/history/analysis", historyHandler.GetAnalysis)
	router.GET("/processes", processHandler.ListProcesses)
	router.DELETE("/processes", processHandler.TerminateAll)
	router.DELETE("/processes/:pid", processHandler.TerminateProcess)

	return &testEnv{
		router:           router,
		registry:         registry,
		history:          history,
		executionService: executionService,
		authService:      authService,
	}
}

// doJSON performs a request with an optional JSON body and decodes the
// response into out when non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w
}
