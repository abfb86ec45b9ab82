package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	customError "github.com/john-courter-lu/LoncotesLibrary/pkg/errors"
	"github.com/john-courter-lu/LoncotesLibrary/pkg/response"
)

// pathID parses the {id} path variable. A malformed id is reported to
// the client as a bad request; ok is false when the response has already
// been written.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

// respondError translates a service error into the external status
// contract: not-found errors get an empty-body 404, validation errors a
// 400 with a short diagnostic, anything else a 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case customError.IsNotFound(err):
		response.NotFound(w)
	case customError.IsValidation(err):
		var de *customError.DomainError
		if errors.As(err, &de) {
			response.BadRequest(w, de.Message, de.Err)
			return
		}
		response.BadRequest(w, err.Error(), nil)
	default:
		response.InternalServerError(w, "Something went wrong", err)
	}
}
