package controller

import (
	"errors"
	"strconv"

	"medboard_backend/internal/service"
	"medboard_backend/internal/taxonomy"
	"medboard_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// GetSummary godoc
// @Summary Accuracy per taxonomy category
// @Description Groups the user's answers by one taxonomy dimension. Unknown group_by values group by disciplines.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param group_by query string false "disciplines, body_systems, specialties, pathophysiology, question_type, age_group or acuity" default(disciplines)
// @Param useTestData query bool false "Return demonstration data"
// @Success 200 {object} util.Response{data=[]taxonomy.CategoryStat}
// @Failure 503 {object} util.Response
// @Router /api/v1/analytics/summary [get]
func (c *AnalyticsController) GetSummary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	useDemo, _ := strconv.ParseBool(ctx.DefaultQuery("useTestData", "false"))
	groupBy := ctx.DefaultQuery("group_by", string(taxonomy.DefaultDimension))

	stats, err := c.AnalyticsService.Summary(user.UserID, groupBy, useDemo)
	if err != nil {
		if errors.Is(err, util.ErrAnalyticsUnavailable) {
			util.LogServiceUnavailable(ctx, err)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, stats)
}

// GetDetailed godoc
// @Summary Detailed performance report
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param days query int false "Period in days" default(30)
// @Success 200 {object} util.Response{data=model.PerformanceReport}
// @Router /api/v1/analytics/detailed [get]
func (c *AnalyticsController) GetDetailed(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "30"))
	util.Success(ctx, c.AnalyticsService.Detailed(user.UserID, days))
}

// GetSystemStats godoc
// @Summary Usage across all users
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param days query int false "Period in days" default(30)
// @Success 200 {object} util.Response{data=model.SystemUsage}
// @Failure 503 {object} util.Response
// @Router /api/v1/analytics/system-stats [get]
func (c *AnalyticsController) GetSystemStats(ctx *gin.Context) {
	days, _ := strconv.Atoi(ctx.DefaultQuery("days", "30"))

	usage, err := c.AnalyticsService.SystemStats(days)
	if err != nil {
		if errors.Is(err, util.ErrAnalyticsUnavailable) {
			util.LogServiceUnavailable(ctx, err)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, usage)
}
