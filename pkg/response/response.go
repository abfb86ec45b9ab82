package response

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// ValidationError is the body returned for rejected requests.
type ValidationError struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// Success sends a 200 JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 JSON response with a Location header
func Created(w http.ResponseWriter, location string, data interface{}) {
	w.Header().Set("Location", location)
	JSON(w, http.StatusCreated, data)
}

// NoContent sends a 204 response with an empty body
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// NotFound sends a 404 response with an empty body
func NotFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

// BadRequest sends a 400 response with a short diagnostic body
func BadRequest(w http.ResponseWriter, message string, err error) {
	body := ValidationError{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	JSON(w, http.StatusBadRequest, body)
}

// InternalServerError sends a 500 response with a short diagnostic body
func InternalServerError(w http.ResponseWriter, message string, err error) {
	body := ValidationError{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	JSON(w, http.StatusInternalServerError, body)
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &responseRecorder{ResponseWriter: w, statusCode: 200}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, recorder.statusCode, duration)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *responseRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
