package common

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationMessage flattens validator errors into "field failed on tag, ..."
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, strings.ToLower(fe.Field())+" failed on "+fe.Tag())
	}
	return strings.Join(msgs, ", ")
}
