// Package api provides HTTP API handlers for the debug and configuration
// endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saheli56/Temple-Run/internal/store"
	"github.com/saheli56/Temple-Run/internal/vision"
)

// ProfileHandler handles HTTP requests for tuning profile resources.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a new ProfileHandler with the given store.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles, /api/profiles/{id}, /api/profiles/{id}/activate
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/activate"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type skinBoundsPayload struct {
	HMin float64 `json:"h_min"`
	SMin float64 `json:"s_min"`
	VMin float64 `json:"v_min"`
	HMax float64 `json:"h_max"`
	SMax float64 `json:"s_max"`
	VMax float64 `json:"v_max"`
}

type createProfileRequest struct {
	Name           string             `json:"name"`
	SkinBounds     *skinBoundsPayload `json:"skin_bounds"`
	MinContourArea float64            `json:"min_contour_area"`
	CooldownMs     int64              `json:"cooldown_ms"`
}

type updateProfileRequest struct {
	Name           string             `json:"name"`
	SkinBounds     *skinBoundsPayload `json:"skin_bounds"`
	MinContourArea float64            `json:"min_contour_area"`
	CooldownMs     int64              `json:"cooldown_ms"`
}

type profileResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	SkinBounds     skinBoundsPayload `json:"skin_bounds"`
	MinContourArea float64           `json:"min_contour_area"`
	CooldownMs     int64             `json:"cooldown_ms"`
	Active         bool              `json:"active"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func boundsToPayload(b vision.HSVBounds) skinBoundsPayload {
	return skinBoundsPayload{
		HMin: b.HMin, SMin: b.SMin, VMin: b.VMin,
		HMax: b.HMax, SMax: b.SMax, VMax: b.VMax,
	}
}

func payloadToBounds(p skinBoundsPayload) vision.HSVBounds {
	return vision.HSVBounds{
		HMin: p.HMin, SMin: p.SMin, VMin: p.VMin,
		HMax: p.HMax, SMax: p.SMax, VMax: p.VMax,
	}
}

// toResponse converts a store.Profile to a profileResponse.
func toResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:             p.ID,
		Name:           p.Name,
		SkinBounds:     boundsToPayload(p.SkinBounds),
		MinContourArea: p.MinContourArea,
		CooldownMs:     p.Cooldown.Milliseconds(),
		Active:         p.Active,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}

	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id} and returns a single profile.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// create handles POST /api/profiles and creates a new profile.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	bounds := vision.DefaultSkinBounds()
	if req.SkinBounds != nil {
		bounds = payloadToBounds(*req.SkinBounds)
	}

	minArea := req.MinContourArea
	if minArea <= 0 {
		minArea = vision.DefaultMinContourArea
	}

	cooldownMs := req.CooldownMs
	if cooldownMs <= 0 {
		cooldownMs = 500
	}

	profile := &store.Profile{
		ID:             uuid.New().String(),
		Name:           req.Name,
		SkinBounds:     bounds,
		MinContourArea: minArea,
		Cooldown:       time.Duration(cooldownMs) * time.Millisecond,
	}

	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile))
}

// update handles PUT /api/profiles/{id} and updates an existing profile.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.SkinBounds != nil {
		profile.SkinBounds = payloadToBounds(*req.SkinBounds)
	}
	if req.MinContourArea > 0 {
		profile.MinContourArea = req.MinContourArea
	}
	if req.CooldownMs > 0 {
		profile.Cooldown = time.Duration(req.CooldownMs) * time.Millisecond
	}

	if err := h.store.Profiles().Update(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// activate handles POST /api/profiles/{id}/activate.
func (h *ProfileHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().Activate(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to activate profile")
		return
	}

	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// delete handles DELETE /api/profiles/{id} and removes a profile.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
