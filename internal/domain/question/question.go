package question

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Variant string

const (
	VariantFour Variant = "four"
	VariantTwo  Variant = "two"
)

// Sample sizes handed out per quiz.
const (
	FourOptionSampleSize = 3
	TwoOptionSampleSize  = 2
)

var ErrUnknownVariant = errors.New("unknown question variant")

func (v Variant) IsValid() bool {
	return v == VariantFour || v == VariantTwo
}

// Check returns ErrUnknownVariant, naming v, for anything but the two known variants.
func (v Variant) Check() error {
	if !v.IsValid() {
		return fmt.Errorf("%w %q", ErrUnknownVariant, v)
	}
	return nil
}

// Question is either a four-option or a two-option question; C and D are empty for the latter.
type Question struct {
	ID        string    `json:"_id"`
	Variant   Variant   `json:"variant"`
	Question  string    `json:"question"`
	A         string    `json:"A"`
	B         string    `json:"B"`
	C         string    `json:"C,omitempty"`
	D         string    `json:"D,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateFourOptionRequest struct {
	Question string `json:"question" yaml:"question" validate:"required"`
	A        string `json:"A" yaml:"A" validate:"required"`
	B        string `json:"B" yaml:"B" validate:"required"`
	C        string `json:"C" yaml:"C" validate:"required"`
	D        string `json:"D" yaml:"D" validate:"required"`
}

type CreateTwoOptionRequest struct {
	Question string `json:"question" yaml:"question" validate:"required"`
	A        string `json:"A" yaml:"A" validate:"required"`
	B        string `json:"B" yaml:"B" validate:"required"`
}

func NewFourOption(req CreateFourOptionRequest) Question {
	return Question{
		ID:        uuid.NewString(),
		Variant:   VariantFour,
		Question:  req.Question,
		A:         req.A,
		B:         req.B,
		C:         req.C,
		D:         req.D,
		CreatedAt: time.Now().UTC(),
	}
}

func NewTwoOption(req CreateTwoOptionRequest) Question {
	return Question{
		ID:        uuid.NewString(),
		Variant:   VariantTwo,
		Question:  req.Question,
		A:         req.A,
		B:         req.B,
		CreatedAt: time.Now().UTC(),
	}
}
