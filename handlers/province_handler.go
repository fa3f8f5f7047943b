package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"nusakalaAPI/services"
)

type ProvinceHandler struct {
	provinceService *services.ProvinceService
}

func NewProvinceHandler(provinceService *services.ProvinceService) *ProvinceHandler {
	return &ProvinceHandler{
		provinceService: provinceService,
	}
}

func (h *ProvinceHandler) ListProvinces(w http.ResponseWriter, r *http.Request) {
	island := r.URL.Query().Get("island")
	respondWithJSON(w, http.StatusOK, h.provinceService.List(island))
}

func (h *ProvinceHandler) GetProvince(w http.ResponseWriter, r *http.Request) {
	p, err := h.provinceService.Get(mux.Vars(r)["slug"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Province not found")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}
