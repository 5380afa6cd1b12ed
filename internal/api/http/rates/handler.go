package rates

import (
	"encoding/json"
	"errors"
	"net/http"

	"currency-bot/internal"

	"go.uber.org/zap"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type exchangeResponse struct {
	From   internal.CurrencyCode `json:"from"`
	To     internal.CurrencyCode `json:"to"`
	Amount string                `json:"amount"`
	Result string                `json:"result"`
	Date   internal.Date         `json:"date"`
}

// Handler exposes the cached snapshot and the conversion engine as a small
// read-only JSON API.
type Handler struct {
	rates  internal.SnapshotProvider
	audit  internal.CommandAuditLogger
	logger *zap.Logger
}

func New(rates internal.SnapshotProvider, audit internal.CommandAuditLogger, logger *zap.Logger) *Handler {
	if audit == nil {
		audit = internal.NopAuditLogger{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{rates: rates, audit: audit, logger: logger.With(zap.String("component", "http"))}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/rates", h.getRates)
	mux.HandleFunc("GET /api/v1/exchange", h.getExchange)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func (h *Handler) getRates(w http.ResponseWriter, r *http.Request) {
	snap, err := h.rates.GetOrRefresh(r.Context())
	if err != nil {
		h.logger.Error("get rates", zap.Error(err))
		h.writeErr(w, http.StatusBadGateway, "rates_unavailable", "rates are temporarily unavailable")
		h.logAudit(r, "api/rates", internal.CommandError, nil)
		return
	}

	h.writeJSON(w, http.StatusOK, snap)
	h.logAudit(r, "api/rates", internal.CommandOK, &snap.Date)
}

func (h *Handler) getExchange(w http.ResponseWriter, r *http.Request) {
	const command = "api/exchange"
	q := r.URL.Query()

	from, err := internal.NewCurrencyCode(q.Get("from"))
	if err != nil {
		h.badRequest(w, r, command, "invalid_currency", "from must be a 3-letter currency code")
		return
	}
	to, err := internal.NewCurrencyCode(q.Get("to"))
	if err != nil {
		h.badRequest(w, r, command, "invalid_currency", "to must be a 3-letter currency code")
		return
	}
	amount, err := internal.ParseAmount(q.Get("amount"))
	if err != nil {
		h.badRequest(w, r, command, "invalid_amount", "amount must be a positive number")
		return
	}

	snap, err := h.rates.GetOrRefresh(r.Context())
	if err != nil {
		h.logger.Error("get rates", zap.Error(err))
		h.writeErr(w, http.StatusBadGateway, "rates_unavailable", "rates are temporarily unavailable")
		h.logAudit(r, command, internal.CommandError, nil)
		return
	}

	result, err := internal.Convert(snap, from, to, amount)
	var unknown *internal.UnknownCurrencyError
	switch {
	case err == nil:
	case errors.As(err, &unknown):
		h.writeErr(w, http.StatusNotFound, "unknown_currency", unknown.Error())
		h.logAudit(r, command, internal.CommandUsage, &snap.Date)
		return
	case errors.Is(err, internal.ErrInvalidAmount):
		h.badRequest(w, r, command, "invalid_amount", "amount must be a positive number")
		return
	default:
		h.logger.Error("convert", zap.Error(err))
		h.writeErr(w, http.StatusInternalServerError, "internal", "conversion failed")
		h.logAudit(r, command, internal.CommandError, &snap.Date)
		return
	}

	h.writeJSON(w, http.StatusOK, exchangeResponse{
		From:   from,
		To:     to,
		Amount: amount.String(),
		Result: result.StringFixed(2),
		Date:   snap.Date,
	})
	h.logAudit(r, command, internal.CommandOK, &snap.Date)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, command, code, msg string) {
	h.writeErr(w, http.StatusBadRequest, code, msg)
	h.logAudit(r, command, internal.CommandUsage, nil)
}

func (h *Handler) writeErr(w http.ResponseWriter, status int, code, msg string) {
	h.writeJSON(w, status, apiError{Code: code, Message: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("write response", zap.Error(err))
	}
}

func (h *Handler) logAudit(r *http.Request, command string, status internal.CommandStatus, date *internal.Date) {
	if err := h.audit.LogCommand(r.Context(), command, status, date); err != nil {
		h.logger.Warn("audit request", zap.String("command", command), zap.Error(err))
	}
}
