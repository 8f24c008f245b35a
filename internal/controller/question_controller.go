package controller

import (
	"errors"
	"strconv"

	"medboard_backend/internal/service"
	"medboard_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// SubmitAnswerRequest defines model for answer submission
// swagger:model SubmitAnswerRequest
type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	UserAnswer string `json:"user_answer" binding:"required"`
}

// VoteRequest defines model for question voting
// swagger:model VoteRequest
type VoteRequest struct {
	Vote string `json:"vote" binding:"required,oneof=up down"`
}

// GetQuestion godoc
// @Summary Get a practice question
// @Description Generates a new question, or falls back to a stored or canned one
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param specialty query string false "Specialty" default(General Medicine)
// @Param difficulty query string false "Difficulty" default(Intermediate)
// @Success 200 {object} util.Response{data=model.QuestionView}
// @Failure 503 {object} util.Response "No question could be provided"
// @Router /api/v1/chat/question [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	q, err := c.QuestionService.ProvideQuestion(ctx.Request.Context(),
		ctx.DefaultQuery("specialty", service.DefaultSpecialty),
		ctx.DefaultQuery("difficulty", service.DefaultDifficulty),
		user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrServiceUnavailable) {
			util.ServiceUnavailable(ctx, util.ErrServiceUnavailable.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, service.ToQuestionView(q))
}

// SubmitAnswer godoc
// @Summary Answer a question
// @Description Grades the answer, stores it and returns feedback
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitAnswerRequest true "Answer"
// @Success 200 {object} util.Response{data=model.AnswerResult}
// @Failure 404 {object} util.Response "Question not found"
// @Router /api/v1/chat/answer [post]
func (c *QuestionController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuestionService.SubmitAnswer(ctx.Request.Context(), user.UserID, req.QuestionID, req.UserAnswer)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// Vote godoc
// @Summary Vote on a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param body body VoteRequest true "up or down"
// @Success 200 {object} util.Response{data=model.VoteResult}
// @Failure 404 {object} util.Response "Question not found"
// @Router /api/v1/chat/question/{id}/vote [post]
func (c *QuestionController) Vote(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	var req VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuestionService.Vote(uint(id), req.Vote)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidVote):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
