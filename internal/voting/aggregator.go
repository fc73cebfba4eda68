package voting

import (
	"context"
	"fmt"

	"github.com/geocoder89/quizvote/internal/domain/vote"
	"golang.org/x/sync/errgroup"
)

type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// AggregateSlot counts votes per distinct value of slot, with a nil group for votes
// that left it empty.
func (a *Aggregator) AggregateSlot(ctx context.Context, slot vote.Slot) ([]vote.OptionCount, error) {
	if !slot.IsValid() {
		return nil, fmt.Errorf("%w: %q", vote.ErrInvalidSlot, slot)
	}

	counts, err := a.store.CountBySlot(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", slot, err)
	}
	if counts == nil {
		counts = []vote.OptionCount{}
	}
	return counts, nil
}

// Results aggregates the four slots concurrently. Any failing slot fails the whole call.
func (a *Aggregator) Results(ctx context.Context) (vote.Results, error) {
	var per [len(vote.Slots)][]vote.OptionCount

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range vote.Slots {
		g.Go(func() error {
			counts, err := a.AggregateSlot(gctx, slot)
			if err != nil {
				return err
			}
			per[i] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return vote.Results{}, err
	}

	res := vote.EmptyResults()
	for i, slot := range vote.Slots {
		res.Set(slot, per[i])
	}
	return res, nil
}
