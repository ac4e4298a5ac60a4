package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/annotune/annotune-api/internal/api/shared"
	"github.com/annotune/annotune-api/internal/domain"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// decodeJSON parses the request body into dst and runs struct
// validation. On failure it writes a business-error response and
// returns false; the handler should simply return.
func decodeJSON(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		shared.RespondWithBusinessError(w, r, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		shared.RespondWithBusinessError(w, r, validationMessage(err))
		return false
	}
	return true
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "invalid request body"
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; ")
}

// currentUser pulls the authenticated user prepared by the auth
// middleware. A miss means the route was wired without the middleware,
// which is a server bug rather than a client error.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.CurrentUser(r.Context())
	if !ok {
		shared.RespondWithSystemError(w, r, errors.New("authenticated user missing from request context"))
		return nil, false
	}
	return user, true
}
