// Package apperror provides the error taxonomy for the webhook relay and
// maps validation failures onto user-facing messages.
package apperror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	errNameRequired         = errors.New("name is required")
	errEmailOrPhoneRequired = errors.New("email or phone is required")
)

var customErrors = map[string]error{
	"Submission.FirstName.required":     errNameRequired,
	"Submission.Email.required_without": errEmailOrPhoneRequired,
	"Submission.Phone.required_without": errEmailOrPhoneRequired,
}

// ValidationMessage converts validator errors into the single message the
// response contract expects. The first failing field wins.
func ValidationMessage(err error) string {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		for _, e := range validationErr {
			key := e.StructNamespace() + "." + e.Tag()
			if v, ok := customErrors[key]; ok {
				return v.Error()
			}
			return fmt.Sprintf("%s is invalid", e.Field())
		}
	}
	return "invalid request payload"
}

// UpstreamError is returned when the CRM API answers with a non-2xx status
// or the request never completes. Status and Body are for logs; callers
// must not leak them to clients.
type UpstreamError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("outseta %s: request failed", e.Endpoint)
	}
	return fmt.Sprintf("outseta %s: unexpected status %d", e.Endpoint, e.Status)
}
