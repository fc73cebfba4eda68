package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/geocoder89/quizvote/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes the request body into out. An empty body decodes as {} so the
// service layer reports missing fields the same way it does for partial bodies.
// On failure it writes a 400 and returns false.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(err))
	return false
}

func bindErrorDetails(err error) gin.H {
	var (
		verrs     validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verrs):
		// only reached by request types that declare gin binding tags
		return gin.H{"fields": validation.FromValidator(verrs).Fields}

	case errors.As(err, &syntaxErr):
		return gin.H{"json": "invalid_json_syntax", "offset": syntaxErr.Offset}

	case errors.As(err, &typeErr):
		// encoding/json reports the dotted path of JSON keys, e.g. "questionThree"
		field := typeErr.Field
		if field == "" {
			field = "(root)"
		}
		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []validation.FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s, got %s", typeErr.Type, typeErr.Value),
			}},
		}

	case errors.As(err, &tooLarge):
		return gin.H{"reason": "request body too large", "limit": tooLarge.Limit}

	case errors.Is(err, io.ErrUnexpectedEOF):
		return gin.H{"json": "truncated_json"}
	}

	return gin.H{"reason": err.Error()}
}
