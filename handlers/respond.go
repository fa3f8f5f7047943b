package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"nusakalaAPI/internal/backend"
	"nusakalaAPI/services"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service errors onto status codes. Messages of
// client errors are passed through; anything else is logged under op.
func respondWithServiceError(w http.ResponseWriter, op string, err error) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrWrongQuestion),
		errors.Is(err, services.ErrInvalidChoice):
		respondWithError(w, http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, services.ErrAlreadyAnswered):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrContentRejected):
		respondWithError(w, http.StatusUnprocessableEntity, clientMessage(err))
	case errors.Is(err, services.ErrUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "Service not available")
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("%s: timed out: %v", op, err)
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	case errors.As(err, &apiErr):
		log.Printf("%s: upstream error: %v", op, err)
		respondWithError(w, http.StatusBadGateway, apiErr.Message)
	default:
		log.Printf("%s: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// clientMessage strips the sentinel prefix from "invalid input: title is
// required" style errors.
func clientMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{services.ErrInvalidInput, services.ErrContentRejected} {
		if prefix := sentinel.Error() + ": "; strings.HasPrefix(msg, prefix) {
			if rest := strings.TrimSpace(strings.TrimPrefix(msg, prefix)); rest != "" {
				return rest
			}
			return sentinel.Error()
		}
	}
	return msg
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
