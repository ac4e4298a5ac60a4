package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/annotune/annotune-api/internal/api/shared"
	"github.com/annotune/annotune-api/internal/service"
)

// UserHandler serves registration, login and user lookup endpoints.
type UserHandler struct {
	userService *service.UserService
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewUserHandler creates a UserHandler with the given dependencies.
func NewUserHandler(userService *service.UserService, validate *validator.Validate, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validate,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /user/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	id, err := h.userService.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, id)
}

// Login handles POST /user/login and returns a signed access token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	token, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, token)
}

// Current handles GET /user/ for the authenticated user.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	shared.RespondWithData(w, r, newUserResponse(user))
}

// List handles GET /user/list with optional keyword and role filters.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	role := r.URL.Query().Get("role")

	users, err := h.userService.List(r.Context(), keyword, role)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	shared.RespondWithData(w, r, out)
}
