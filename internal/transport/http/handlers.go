package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodia/internal/verification"
	dErrors "custodia/pkg/domain-errors"
)

// VerificationService is the slice of the orchestrator the handlers need.
type VerificationService interface {
	Verify(ctx context.Context, pluginType verification.PluginType, filters verification.Filters, params verification.Params) (verification.Result, error)
	Create(ctx context.Context, pluginType verification.PluginType, filters verification.Filters, params verification.Params) (verification.CreateResult, error)
	Add(ctx context.Context, pluginType verification.PluginType, agentID string, filters verification.Filters, params verification.Params) error
}

// Handler holds the HTTP handlers.
type Handler struct {
	service VerificationService
	logger  *slog.Logger
}

func NewHandler(service VerificationService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type verifyRequest struct {
	PluginType verification.PluginType `json:"pluginType"`
	Filters    verification.Filters    `json:"filters"`
	Params     verification.Params     `json:"params"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "request body is not valid JSON"))
		return
	}
	if req.PluginType == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "pluginType is required"))
		return
	}

	result, err := h.service.Verify(r.Context(), req.PluginType, req.Filters, req.Params)
	if err != nil {
		h.logVerifyFailure(r, req.PluginType, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "request body is not valid JSON"))
		return
	}
	if req.PluginType == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "pluginType is required"))
		return
	}

	result, err := h.service.Create(r.Context(), req.PluginType, req.Filters, req.Params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleAddPlugin(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "request body is not valid JSON"))
		return
	}
	if req.PluginType == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "pluginType is required"))
		return
	}

	if err := h.service.Add(r.Context(), req.PluginType, agentID, req.Filters, req.Params); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "success"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logVerifyFailure keeps rejected verifications visible without leaking
// request payloads into the log.
func (h *Handler) logVerifyFailure(r *http.Request, pluginType verification.PluginType, err error) {
	h.logger.InfoContext(r.Context(), "verification rejected",
		"plugin", pluginType, "code", dErrors.CodeOf(err))
}
