package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/quizvote/internal/config"
	"github.com/geocoder89/quizvote/internal/domain/vote"
	"github.com/geocoder89/quizvote/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type VoteCaster interface {
	CastVote(ctx context.Context, userID string, answers vote.Answers) (vote.Outcome, error)
}

type VotesHandler struct {
	ledger VoteCaster
}

func NewVotesHandler(ledger VoteCaster) *VotesHandler {
	return &VotesHandler{ledger: ledger}
}

// PostAnswer handles POST /api/post-answer. Must run behind RequireAuth.
func (h *VotesHandler) PostAnswer(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondFailure(ctx, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	var answers vote.Answers

	if !BindJSON(ctx, &answers) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	outcome, err := h.ledger.CastVote(cctx, userID, answers)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	switch outcome {
	case vote.OutcomeAlreadyVoted:
		RespondMessage(ctx, http.StatusOK, "you already voted")
	default:
		RespondMessage(ctx, http.StatusOK, "your vote has been recorded succesfully")
	}
}
