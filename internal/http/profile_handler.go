package http

import (
	"context"
	"net/http"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, req service.ProfileRequest) (*domain.Profile, error)
}

type ProfileHandler struct {
	profiles ProfileService
	timeout  time.Duration
}

func NewProfileHandler(profiles ProfileService, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		timeout:  timeout,
	}
}

// GET /api/user/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	profile, err := h.profiles.GetProfile(ctx, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// PUT /api/user/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, ok := getUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req UpdateProfileRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	update := service.ProfileRequest{
		Name:      req.Name,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Addresses: req.Addresses,
	}
	if req.DOB != nil {
		dob, err := parseDate(*req.DOB)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_argument", "dob must be a date like 2006-01-02")
			return
		}
		update.DOB = &dob
	}

	profile, err := h.profiles.UpdateProfile(ctx, userID, update)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, UpdateProfileResponse{Message: "Profile updated successfully", User: profile})
}

// parseDate accepts a bare date as sent by date inputs, or a full timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
