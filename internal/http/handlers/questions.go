package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/quizvote/internal/config"
	"github.com/geocoder89/quizvote/internal/domain/question"
	"github.com/gin-gonic/gin"
)

type QuestionCatalog interface {
	CreateFourOption(ctx context.Context, req question.CreateFourOptionRequest) (question.Question, error)
	CreateTwoOption(ctx context.Context, req question.CreateTwoOptionRequest) (question.Question, error)
	Sample(ctx context.Context) ([]question.Question, error)
}

type QuestionsHandler struct {
	catalog QuestionCatalog
}

func NewQuestionsHandler(catalog QuestionCatalog) *QuestionsHandler {
	return &QuestionsHandler{catalog: catalog}
}

func (h *QuestionsHandler) PostFourOption(ctx *gin.Context) {
	var req question.CreateFourOptionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.catalog.CreateFourOption(cctx, req); err != nil {
		RespondError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "question added succesfully")
}

func (h *QuestionsHandler) PostTwoOption(ctx *gin.Context) {
	var req question.CreateTwoOptionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.catalog.CreateTwoOption(cctx, req); err != nil {
		RespondError(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "question added succesfully")
}

// GetQuestions handles GET /api/get-questions
func (h *QuestionsHandler) GetQuestions(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	qs, err := h.catalog.Sample(cctx)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondData(ctx, qs)
}
