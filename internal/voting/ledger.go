// Package voting records votes and tallies them per slot.
package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/quizvote/internal/domain/vote"
)

// Store is the persistence a Ledger and an Aggregator need. InsertIfAbsent must be
// atomic per user: of any number of concurrent inserts for one user, at most one succeeds.
type Store interface {
	InsertIfAbsent(ctx context.Context, v vote.Vote) (bool, error)
	GetByUser(ctx context.Context, userID string) (vote.Vote, error)
	CountBySlot(ctx context.Context, slot vote.Slot) ([]vote.OptionCount, error)
}

// Metrics receives one outcome label per CastVote call.
type Metrics interface {
	ObserveVote(outcome string)
}

type Ledger struct {
	store      Store
	log        *slog.Logger
	metrics    Metrics
	onRecorded []func(ctx context.Context)
}

type LedgerOption func(*Ledger)

func WithMetrics(m Metrics) LedgerOption {
	return func(l *Ledger) { l.metrics = m }
}

// OnRecorded registers a hook run after a new vote is stored, e.g. to drop cached results.
func OnRecorded(fn func(ctx context.Context)) LedgerOption {
	return func(l *Ledger) { l.onRecorded = append(l.onRecorded, fn) }
}

func NewLedger(store Store, log *slog.Logger, opts ...LedgerOption) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	l := &Ledger{store: store, log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var ErrMissingUser = errors.New("voting: missing user id")

// CastVote stores answers as userID's vote unless that user already voted. A second
// vote is not an error and leaves the first untouched, whatever its answers.
func (l *Ledger) CastVote(ctx context.Context, userID string, answers vote.Answers) (vote.Outcome, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrMissingUser
	}

	inserted, err := l.store.InsertIfAbsent(ctx, vote.New(userID, answers))
	if err != nil {
		l.observe("error")
		return 0, fmt.Errorf("record vote: %w", err)
	}

	if !inserted {
		l.observe(vote.OutcomeAlreadyVoted.String())
		l.log.DebugContext(ctx, "vote_rejected_already_voted", "user_id", userID)
		return vote.OutcomeAlreadyVoted, nil
	}

	l.observe(vote.OutcomeRecorded.String())
	l.log.InfoContext(ctx, "vote_recorded", "user_id", userID)

	for _, fn := range l.onRecorded {
		fn(ctx)
	}
	return vote.OutcomeRecorded, nil
}

// VoteOf returns the vote userID cast, or vote.ErrNotFound.
func (l *Ledger) VoteOf(ctx context.Context, userID string) (vote.Vote, error) {
	return l.store.GetByUser(ctx, userID)
}

func (l *Ledger) observe(outcome string) {
	if l.metrics != nil {
		l.metrics.ObserveVote(outcome)
	}
}
