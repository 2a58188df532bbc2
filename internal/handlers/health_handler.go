package handlers

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"intervue/internal/config"
	"intervue/internal/llm"
	"intervue/internal/prompts"
	"intervue/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	config        *config.Config
	redis         *redis.Client
	db            *gorm.DB
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, cfg *config.Config, redisClient *redis.Client, db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
		redis:         redisClient,
		db:            db,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "intervue",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// a nil provider means fallback-only operation, which is still serviceable
	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{
			Status:  "ok",
			Message: "Running with deterministic fallbacks only",
		}
	} else {
		checks["provider"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify prompt manager has templates loaded
	if handler.promptManager == nil {
		checks["prompt_manager"] = ReadinessCheck{
			Status:  "failed",
			Message: "Prompt manager not initialized",
		}
		allChecksPass = false
	} else if len(handler.promptManager.Modes()) == 0 {
		checks["prompt_manager"] = ReadinessCheck{
			Status:  "failed",
			Message: "No prompt templates loaded",
		}
		allChecksPass = false
	} else {
		checks["prompt_manager"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify the session store is reachable
	if handler.redis == nil {
		checks["session_store"] = ReadinessCheck{
			Status:  "failed",
			Message: "Session store not initialized",
		}
		allChecksPass = false
	} else if err := handler.redis.Ping(request.Context()).Err(); err != nil {
		checks["session_store"] = ReadinessCheck{
			Status:  "failed",
			Message: err.Error(),
		}
		allChecksPass = false
	} else {
		checks["session_store"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify the record database is reachable
	if handler.db == nil {
		checks["record_store"] = ReadinessCheck{
			Status:  "failed",
			Message: "Record store not initialized",
		}
		allChecksPass = false
	} else if sqlDB, err := handler.db.DB(); err != nil {
		checks["record_store"] = ReadinessCheck{
			Status:  "failed",
			Message: err.Error(),
		}
		allChecksPass = false
	} else if err := sqlDB.PingContext(request.Context()); err != nil {
		checks["record_store"] = ReadinessCheck{
			Status:  "failed",
			Message: err.Error(),
		}
		allChecksPass = false
	} else {
		checks["record_store"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	response := ReadinessResponse{
		Service: "intervue",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
