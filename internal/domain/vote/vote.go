package vote

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("vote not found")
	ErrInvalidSlot = errors.New("invalid slot")
)

// Slot names one of the four fixed answer positions of a vote.
type Slot string

const (
	SlotOne   Slot = "questionOne"
	SlotTwo   Slot = "questionTwo"
	SlotThree Slot = "questionThree"
	SlotFour  Slot = "questionFour"
)

// Slots in result order.
var Slots = [4]Slot{SlotOne, SlotTwo, SlotThree, SlotFour}

func (s Slot) IsValid() bool {
	switch s {
	case SlotOne, SlotTwo, SlotThree, SlotFour:
		return true
	}
	return false
}

// Answers holds the submitted option per slot. A nil pointer means the slot was left out.
type Answers struct {
	QuestionOne   *string `json:"questionOne,omitempty"`
	QuestionTwo   *string `json:"questionTwo,omitempty"`
	QuestionThree *string `json:"questionThree,omitempty"`
	QuestionFour  *string `json:"questionFour,omitempty"`
}

func (a Answers) Get(s Slot) *string {
	switch s {
	case SlotOne:
		return a.QuestionOne
	case SlotTwo:
		return a.QuestionTwo
	case SlotThree:
		return a.QuestionThree
	case SlotFour:
		return a.QuestionFour
	}
	return nil
}

type Vote struct {
	ID     string `json:"_id"`
	UserID string `json:"user"`
	Answers
	CreatedAt time.Time `json:"createdAt"`
}

func New(userID string, answers Answers) Vote {
	return Vote{
		ID:        uuid.NewString(),
		UserID:    userID,
		Answers:   answers,
		CreatedAt: time.Now().UTC(),
	}
}

// Outcome of casting a vote. Both outcomes are successful responses.
type Outcome int

const (
	OutcomeRecorded Outcome = iota + 1
	OutcomeAlreadyVoted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeAlreadyVoted:
		return "already_voted"
	}
	return "unknown"
}

// OptionCount is one group of a slot aggregation. Option is nil for votes that left the slot empty.
type OptionCount struct {
	Option *string `json:"_id"`
	Count  int64   `json:"count"`
}

type Results struct {
	QuestionOne   []OptionCount `json:"Question 1"`
	QuestionTwo   []OptionCount `json:"Question 2"`
	QuestionThree []OptionCount `json:"Question 3"`
	QuestionFour  []OptionCount `json:"Question 4"`
}

// EmptyResults has four empty, non-nil groups so it encodes as arrays.
func EmptyResults() Results {
	return Results{
		QuestionOne:   []OptionCount{},
		QuestionTwo:   []OptionCount{},
		QuestionThree: []OptionCount{},
		QuestionFour:  []OptionCount{},
	}
}

func (r *Results) Set(s Slot, counts []OptionCount) {
	if counts == nil {
		counts = []OptionCount{}
	}
	switch s {
	case SlotOne:
		r.QuestionOne = counts
	case SlotTwo:
		r.QuestionTwo = counts
	case SlotThree:
		r.QuestionThree = counts
	case SlotFour:
		r.QuestionFour = counts
	}
}

// SortCounts orders groups by count descending, then by option with the empty group first.
func SortCounts(counts []OptionCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		a, b := counts[i], counts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Option == nil || b.Option == nil {
			return a.Option == nil && b.Option != nil
		}
		return *a.Option < *b.Option
	})
}
