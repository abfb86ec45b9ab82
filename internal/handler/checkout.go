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

type CheckoutHandler struct {
	service   *service.LibraryService
	validator *validator.Validate
}

func NewCheckoutHandler(service *service.LibraryService) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Create handles POST /api/checkouts
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		respondError(w, customError.WrapValidationFailed(err))
		return
	}

	checkout, err := h.service.CreateCheckout(r.Context(), &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, "/api/checkouts/"+checkout.ID.String(), checkout)
}

// List handles GET /api/checkouts
func (h *CheckoutHandler) List(w http.ResponseWriter, r *http.Request) {
	checkouts, err := h.service.ListCheckouts(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, checkouts)
}

// ListOverdue handles GET /api/checkouts/overdue
func (h *CheckoutHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	checkouts, err := h.service.ListOverdueCheckouts(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, checkouts)
}

// Return handles PUT /api/checkouts/{id}/return
func (h *CheckoutHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.ReturnCheckout(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}
