package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
	"github.com/john-courter-lu/LoncotesLibrary/internal/service"
	customError "github.com/john-courter-lu/LoncotesLibrary/pkg/errors"
	"github.com/john-courter-lu/LoncotesLibrary/pkg/response"
)

type PatronHandler struct {
	service   *service.LibraryService
	validator *validator.Validate
}

func NewPatronHandler(service *service.LibraryService) *PatronHandler {
	return &PatronHandler{
		service:   service,
		validator: validator.New(),
	}
}

// List handles GET /api/patrons
func (h *PatronHandler) List(w http.ResponseWriter, r *http.Request) {
	patrons, err := h.service.ListPatrons(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, patrons)
}

// Get handles GET /api/patrons/{id}
func (h *PatronHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	patron, err := h.service.GetPatron(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, patron)
}

// UpdateContact handles PUT /api/patrons/{id}
func (h *PatronHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request domain.UpdatePatronRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		respondError(w, customError.WrapValidationFailed(err))
		return
	}

	if err := h.service.UpdatePatronContact(r.Context(), id, &request); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}

// ToggleActive handles PUT /api/patrons/{id}/edit-active-status
func (h *PatronHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.TogglePatronActive(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}
