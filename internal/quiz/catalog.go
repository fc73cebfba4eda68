// Package quiz creates questions and hands out random quiz samples.
package quiz

import (
	"context"
	"fmt"

	"github.com/geocoder89/quizvote/internal/domain/question"
	"github.com/geocoder89/quizvote/internal/validation"
)

type Store interface {
	Create(ctx context.Context, q question.Question) (question.Question, error)
	Sample(ctx context.Context, variant question.Variant, n int) ([]question.Question, error)
	Count(ctx context.Context, variant question.Variant) (int, error)
}

type Catalog struct {
	store Store
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

func (c *Catalog) CreateFourOption(ctx context.Context, req question.CreateFourOptionRequest) (question.Question, error) {
	if err := validation.Struct(req); err != nil {
		return question.Question{}, err
	}

	q, err := c.store.Create(ctx, question.NewFourOption(req))
	if err != nil {
		return question.Question{}, fmt.Errorf("create four-option question: %w", err)
	}
	return q, nil
}

func (c *Catalog) CreateTwoOption(ctx context.Context, req question.CreateTwoOptionRequest) (question.Question, error) {
	if err := validation.Struct(req); err != nil {
		return question.Question{}, err
	}

	q, err := c.store.Create(ctx, question.NewTwoOption(req))
	if err != nil {
		return question.Question{}, fmt.Errorf("create two-option question: %w", err)
	}
	return q, nil
}

// Sample returns up to three four-option questions followed by up to two two-option
// questions, each drawn without replacement. Short pools give a shorter quiz.
func (c *Catalog) Sample(ctx context.Context) ([]question.Question, error) {
	four, err := c.store.Sample(ctx, question.VariantFour, question.FourOptionSampleSize)
	if err != nil {
		return nil, fmt.Errorf("sample four-option questions: %w", err)
	}
	two, err := c.store.Sample(ctx, question.VariantTwo, question.TwoOptionSampleSize)
	if err != nil {
		return nil, fmt.Errorf("sample two-option questions: %w", err)
	}

	// stores may over-deliver; never hand out more than the fixed quiz shape
	if len(four) > question.FourOptionSampleSize {
		four = four[:question.FourOptionSampleSize]
	}
	if len(two) > question.TwoOptionSampleSize {
		two = two[:question.TwoOptionSampleSize]
	}

	out := make([]question.Question, 0, len(four)+len(two))
	out = append(out, four...)
	return append(out, two...), nil
}

type PoolSizes struct {
	FourOption int `json:"fourOption"`
	TwoOption  int `json:"twoOption"`
}

func (c *Catalog) Count(ctx context.Context) (PoolSizes, error) {
	four, err := c.store.Count(ctx, question.VariantFour)
	if err != nil {
		return PoolSizes{}, err
	}
	two, err := c.store.Count(ctx, question.VariantTwo)
	if err != nil {
		return PoolSizes{}, err
	}
	return PoolSizes{FourOption: four, TwoOption: two}, nil
}
