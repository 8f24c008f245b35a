package controller

import (
	"context"
	"net/http"
	"time"

	"medboard_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB             *gorm.DB
	TaggingBackend string
	LLMModel       string
}

func NewHealthController(db *gorm.DB, taggingBackend, llmModel string) *HealthController {
	return &HealthController{DB: db, TaggingBackend: taggingBackend, LLMModel: llmModel}
}

// Liveness godoc
// @Summary Liveness check
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /healthz [get]
func (c *HealthController) Liveness(ctx *gin.Context) {
	util.Success(ctx, gin.H{"status": "ok"})
}

// HealthCheck godoc
// @Summary 健康检查
// @Description 检查服务与数据库状态
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database":        "up",
			"tagging_backend": c.TaggingBackend,
			"llm_model":       c.LLMModel,
		},
	})
}
