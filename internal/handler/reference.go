package handler

import (
	"net/http"

	"github.com/john-courter-lu/LoncotesLibrary/internal/service"
	"github.com/john-courter-lu/LoncotesLibrary/pkg/response"
)

type ReferenceHandler struct {
	service *service.LibraryService
}

func NewReferenceHandler(service *service.LibraryService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

// ListMaterialTypes handles GET /api/materialtypes
func (h *ReferenceHandler) ListMaterialTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListMaterialTypes(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, types)
}

// ListGenres handles GET /api/genres
func (h *ReferenceHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.ListGenres(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, genres)
}
