package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/john-courter-lu/LoncotesLibrary/internal/domain"
	"github.com/john-courter-lu/LoncotesLibrary/internal/service"
	customError "github.com/john-courter-lu/LoncotesLibrary/pkg/errors"
	"github.com/john-courter-lu/LoncotesLibrary/pkg/response"
)

type MaterialHandler struct {
	service   *service.LibraryService
	validator *validator.Validate
}

func NewMaterialHandler(service *service.LibraryService) *MaterialHandler {
	return &MaterialHandler{
		service:   service,
		validator: validator.New(),
	}
}

// List handles GET /api/materials?materialTypeId=&genreId=
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.MaterialFilter

	if raw := r.URL.Query().Get("materialTypeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid materialTypeId filter", err)
			return
		}
		filter.MaterialTypeID = &id
	}

	if raw := r.URL.Query().Get("genreId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid genreId filter", err)
			return
		}
		filter.GenreID = &id
	}

	materials, err := h.service.ListCirculatingMaterials(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, materials)
}

// Get handles GET /api/materials/{id}
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	material, err := h.service.GetMaterial(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, material)
}

// Create handles POST /api/materials
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		respondError(w, customError.WrapValidationFailed(err))
		return
	}

	material, err := h.service.CreateMaterial(r.Context(), &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, "/api/materials/"+material.ID.String(), material)
}

// Retire handles DELETE /api/materials/{id}
func (h *MaterialHandler) Retire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.RetireMaterial(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}
