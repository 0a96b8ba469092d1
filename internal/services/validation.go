package services

import (
	"fmt"

	chat_errors "chatgraph/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateInput(in interface{}) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", chat_errors.ErrInvalidInput, err.Error())
	}
	return nil
}

// blankToNil treats a pointer to "" like an omitted field.
func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
