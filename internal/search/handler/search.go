package handler

import (
	"net/http"

	"roombook/internal/search/service"
	httputil "roombook/pkg/http"
	"roombook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type SearchHandler struct {
	service service.SearchService
	log     *logger.Logger
}

func NewSearchHandler(service service.SearchService, log *logger.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		log:     log,
	}
}

// Available handles GET /api/v1/resources/available?start=&end=&min_capacity=&equipment=
func (h *SearchHandler) Available(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	iv, err := httputil.ExtractInterval(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Available", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	minCapacity, err := httputil.ExtractMinCapacity(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Available", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resources, err := h.service.Search(r.Context(), iv, minCapacity, httputil.ExtractEquipment(r))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Available", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteList(w, resources); err != nil {
		h.log.Error("failed to write list response", "handler", "Available", "operation", "WriteList", "error", err)
	}
}

func (h *SearchHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/resources/available", h.Available)
}
