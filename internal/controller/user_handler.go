package controller

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rabogan/esl-lesson-system/internal/model"
	"github.com/rabogan/esl-lesson-system/internal/service"
	"go.uber.org/zap"
)

type userService interface {
	Profile(ctx context.Context, principal model.Principal) (*service.Profile, error)
	Timezone(ctx context.Context, principal model.Principal) (string, error)
	UpdateTimezone(ctx context.Context, principal model.Principal, zone string) error
}

type UserHandler struct {
	users    userService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewUserHandler(users userService, validate *validator.Validate, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: validate,
		logger:   logger,
	}
}

type updateTimezoneRequest struct {
	Timezone string `json:"timezone" validate:"required"`
}

// Me handles GET /me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	profile, err := h.users.Profile(r.Context(), principal)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateTimezone handles PUT /me/timezone. The zone name is validated
// before it is stored; there is no silent fallback on this path.
func (h *UserHandler) UpdateTimezone(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var req updateTimezoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.users.UpdateTimezone(r.Context(), principal, req.Timezone); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
