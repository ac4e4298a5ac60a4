package api

import (
	"net/http"

	"github.com/annotune/annotune-api/internal/api/shared"
	"github.com/annotune/annotune-api/internal/service"
)

// respondServiceError renders a service-layer error. Business-rule
// failures (bad input, missing entities, forbidden operations) keep
// HTTP 200 with success=false so clients branch on the envelope, while
// anything else is treated as a system failure.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if service.IsBusinessError(err) {
		shared.RespondWithBusinessError(w, r, err.Error())
		return
	}
	shared.RespondWithSystemError(w, r, err)
}
