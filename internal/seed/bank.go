// Package seed loads question banks from YAML files into the question store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/geocoder89/quizvote/internal/domain/question"
	"github.com/geocoder89/quizvote/internal/quiz"
	"gopkg.in/yaml.v3"
)

// Bank is the file format:
//
//	fourOption:
//	  - question: Favourite season?
//	    A: spring
//	    B: summer
//	    C: autumn
//	    D: winter
//	twoOption:
//	  - question: Tea or coffee?
//	    A: tea
//	    B: coffee
type Bank struct {
	FourOption []question.CreateFourOptionRequest `yaml:"fourOption"`
	TwoOption  []question.CreateTwoOptionRequest  `yaml:"twoOption"`
}

// Catalog is the subset of quiz.Catalog the loader needs.
type Catalog interface {
	CreateFourOption(ctx context.Context, req question.CreateFourOptionRequest) (question.Question, error)
	CreateTwoOption(ctx context.Context, req question.CreateTwoOptionRequest) (question.Question, error)
	Count(ctx context.Context) (quiz.PoolSizes, error)
}

// ParseBank decodes a bank, rejecting unknown keys so typos do not load empty questions.
func ParseBank(r io.Reader) (Bank, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var b Bank
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return Bank{}, errors.New("seed: empty question bank")
		}
		return Bank{}, fmt.Errorf("seed: parse question bank: %w", err)
	}
	if len(b.FourOption) == 0 && len(b.TwoOption) == 0 {
		return Bank{}, errors.New("seed: question bank has no questions")
	}
	return b, nil
}

// Report counts what Load inserted and the pool sizes afterwards.
type Report struct {
	FourOptionAdded int
	TwoOptionAdded  int
	Pools           quiz.PoolSizes
}

// Load inserts every question of b through the catalog, stopping at the first failure.
// Questions inserted before the failure stay.
func Load(ctx context.Context, catalog Catalog, b Bank, log *slog.Logger) (Report, error) {
	if log == nil {
		log = slog.Default()
	}

	var rep Report

	for i, req := range b.FourOption {
		if _, err := catalog.CreateFourOption(ctx, req); err != nil {
			return rep, fmt.Errorf("fourOption[%d]: %w", i, err)
		}
		rep.FourOptionAdded++
	}
	for i, req := range b.TwoOption {
		if _, err := catalog.CreateTwoOption(ctx, req); err != nil {
			return rep, fmt.Errorf("twoOption[%d]: %w", i, err)
		}
		rep.TwoOptionAdded++
	}

	pools, err := catalog.Count(ctx)
	if err != nil {
		return rep, fmt.Errorf("count questions: %w", err)
	}
	rep.Pools = pools

	log.InfoContext(ctx, "question_bank_loaded",
		"four_option_added", rep.FourOptionAdded,
		"two_option_added", rep.TwoOptionAdded,
		"four_option_pool", pools.FourOption,
		"two_option_pool", pools.TwoOption,
	)
	return rep, nil
}
