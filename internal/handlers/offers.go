package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/models"
)

const offerPathPrefix = "/api/offers/"

// OfferHandler обрабатывает запросы управления акциями.
type OfferHandler struct {
	offerService OfferService
	log          *logger.Logger
}

// NewOfferHandler создает новый обработчик акций.
func NewOfferHandler(offerService OfferService, log *logger.Logger) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
		log:          log,
	}
}

// CreateOffer создает акцию.
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	offer, err := h.offerService.CreateOffer(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create offer")
		return
	}

	writeJSONResponse(w, http.StatusCreated, offer)
}

// ListOffers возвращает список акций. С параметром active=true возвращаются
// только акции, действующие в текущий момент.
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if r.URL.Query().Get("active") == "true" {
		offers, err := h.offerService.ListActive(r.Context(), time.Now())
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to list active offers")
			return
		}
		writeJSONResponse(w, http.StatusOK, offers)
		return
	}

	limit, offset := parsePagination(r, 50, 200)

	offers, err := h.offerService.ListOffers(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list offers")
		return
	}

	writeJSONResponse(w, http.StatusOK, offers)
}

// GetOffer возвращает акцию по ID.
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	offerID, err := extractUUIDFromPath(r.URL.Path, offerPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := h.offerService.GetOffer(r.Context(), offerID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get offer")
		return
	}

	writeJSONResponse(w, http.StatusOK, offer)
}

// UpdateOffer обновляет акцию.
func (h *OfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	offerID, err := extractUUIDFromPath(r.URL.Path, offerPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	offer, err := h.offerService.UpdateOffer(r.Context(), offerID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update offer")
		return
	}

	writeJSONResponse(w, http.StatusOK, offer)
}

// ToggleOffer включает или выключает акцию.
func (h *OfferHandler) ToggleOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	offerID, err := extractUUIDFromPath(r.URL.Path, offerPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.ToggleOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.offerService.ToggleOffer(r.Context(), offerID, req.IsActive); err != nil {
		writeServiceError(w, h.log, err, "Failed to toggle offer")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"id":        offerID,
		"is_active": req.IsActive,
	})
}

// DeleteOffer удаляет акцию.
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	offerID, err := extractUUIDFromPath(r.URL.Path, offerPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.offerService.DeleteOffer(r.Context(), offerID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete offer")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Offer deleted"})
}
