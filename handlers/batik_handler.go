package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"nusakalaAPI/services"
)

type BatikHandler struct {
	batikService *services.BatikService
}

func NewBatikHandler(batikService *services.BatikService) *BatikHandler {
	return &BatikHandler{
		batikService: batikService,
	}
}

// readUpload pulls one multipart file field, refusing anything over limit.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, "", "", err
	}
	return readFormFile(r, field, limit)
}

// readFormFile reads a file field from an already parsed multipart form.
func readFormFile(r *http.Request, field string, limit int64) ([]byte, string, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, "", "", err
	}
	if int64(len(data)) > limit {
		return nil, "", "", errFileTooLarge
	}
	return data, header.Filename, header.Header.Get("Content-Type"), nil
}

var errFileTooLarge = errors.New("file too large")

func (h *BatikHandler) Identify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	data, filename, contentType, err := readUpload(w, r, "image", services.MaxBatikImageBytes)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Image must be at most 10MB")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Multipart field 'image' is required")
		return
	}

	result, err := h.batikService.Identify(ctx, data, filename, contentType)
	if err != nil {
		respondWithServiceError(w, "IdentifyBatik", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *BatikHandler) ListMotifs(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.batikService.Motifs())
}

func (h *BatikHandler) GetMotif(w http.ResponseWriter, r *http.Request) {
	m, err := h.batikService.Motif(mux.Vars(r)["slug"])
	if err != nil {
		respondWithServiceError(w, "GetMotif", err)
		return
	}
	respondWithJSON(w, http.StatusOK, m)
}
