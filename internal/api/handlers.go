package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pandolabs/ecocart/internal/archive"
	"github.com/pandolabs/ecocart/internal/bridge"
	"github.com/pandolabs/ecocart/internal/models"
	"github.com/pandolabs/ecocart/internal/settings"
)

// Dispatcher routes one typed message against the live cart page.
type Dispatcher interface {
	Dispatch(ctx context.Context, req bridge.Request) bridge.Response
}

// ScanArchive is the optional history backend. A nil archive disables the
// scan history endpoints but never blocks scanning itself.
type ScanArchive interface {
	Save(ctx context.Context, snapshot *models.CartSnapshot) (*archive.ScanRecord, error)
	Recent(ctx context.Context, limit int) ([]archive.ScanRecord, error)
	GetStats(ctx context.Context) (*archive.Stats, error)
}

type Handlers struct {
	dispatcher Dispatcher
	store      settings.Store
	archive    ScanArchive
	logger     *slog.Logger
}

func NewHandlers(dispatcher Dispatcher, store settings.Store, scanArchive ScanArchive, logger *slog.Logger) *Handlers {
	return &Handlers{
		dispatcher: dispatcher,
		store:      store,
		archive:    scanArchive,
		logger:     logger,
	}
}

// Mount handles the handshake probe the trigger surface sends before
// enabling its buttons.
func (h *Handlers) Mount(w http.ResponseWriter, r *http.Request) {
	resp := h.dispatcher.Dispatch(r.Context(), bridge.Request{Type: bridge.MessageMount})
	h.respondJSON(w, http.StatusOK, resp)
}

// Scan extracts the current cart. Successful scans also land in the
// archive when one is configured; archiving failures are logged and do not
// fail the scan.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	resp := h.dispatcher.Dispatch(r.Context(), bridge.Request{Type: bridge.MessageScan})

	if resp.OK && resp.Data != nil && h.archive != nil {
		if _, err := h.archive.Save(r.Context(), resp.Data); err != nil {
			h.logger.Error("failed to archive scan", "error", err)
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// SuggestRequest carries the snapshot to coach on. The model is optional.
type SuggestRequest struct {
	Model string               `json:"model,omitempty"`
	Cart  *models.CartSnapshot `json:"cart"`
}

// Suggest requests coaching text for a previously scanned snapshot.
func (h *Handlers) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp := h.dispatcher.Dispatch(r.Context(), bridge.Request{
		Type:  bridge.MessageSuggest,
		Model: req.Model,
		Cart:  req.Cart,
	})
	h.respondJSON(w, http.StatusOK, resp)
}

// APIKeyRequest carries a new Gemini credential.
type APIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// APIKeyResponse never echoes the stored key back in full.
type APIKeyResponse struct {
	Set       bool   `json:"set"`
	MaskedKey string `json:"masked_key,omitempty"`
}

// PutAPIKey stores the Gemini credential.
func (h *Handlers) PutAPIKey(w http.ResponseWriter, r *http.Request) {
	var req APIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.SetAPIKey(r.Context(), req.APIKey); err != nil {
		if errors.Is(err, settings.ErrEmptyKey) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to store api key", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to store api key")
		return
	}

	h.respondJSON(w, http.StatusOK, APIKeyResponse{Set: true, MaskedKey: maskKey(req.APIKey)})
}

// GetAPIKey reports whether a credential is stored, masked.
func (h *Handlers) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.store.APIKey(r.Context())
	if err != nil {
		h.logger.Error("failed to read api key", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to read api key")
		return
	}

	h.respondJSON(w, http.StatusOK, APIKeyResponse{Set: key != "", MaskedKey: maskKey(key)})
}

// RecentScans lists the newest archived scans.
func (h *Handlers) RecentScans(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.respondError(w, http.StatusServiceUnavailable, "scan archive is not configured")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.archive.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list scans", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	if records == nil {
		records = []archive.ScanRecord{}
	}

	h.respondJSON(w, http.StatusOK, records)
}

// GetStats aggregates the archive for the impact view.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.respondError(w, http.StatusServiceUnavailable, "scan archive is not configured")
		return
	}

	stats, err := h.archive.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
