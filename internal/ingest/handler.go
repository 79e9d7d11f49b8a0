package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pcparts/notify-relay/internal/notify"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Submitter is the part of Service the HTTP handlers depend on.
type Submitter interface {
	SubmitOrder(ctx context.Context, body []byte) (OrderResult, error)
	SubmitPromotions(ctx context.Context, body []byte) (PromotionResult, error)
}

type Response struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	AdminCount *int   `json:"adminCount,omitempty"`
}

// Handler exposes Submitter over HTTP.
type Handler struct {
	svc   Submitter
	token string
	log   *zap.Logger
}

// NewHandler returns the ingestion routes. When token is non-empty every
// request must present it.
func NewHandler(svc Submitter, token string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, token: token, log: log}
}

func (h *Handler) Mount(r *mux.Router) {
	sub := r.PathPrefix("/notify").Subrouter()
	sub.HandleFunc("/new-order", h.authorized(h.handleNewOrder)).Methods(http.MethodPost)
	sub.HandleFunc("/expiring-promotions", h.authorized(h.handleExpiringPromotions)).Methods(http.MethodPost)
}

func (h *Handler) handleNewOrder(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.SubmitOrder(r.Context(), body); err != nil {
		h.reject(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "New order notification sent to admins",
	})
}

func (h *Handler) handleExpiringPromotions(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	res, err := h.svc.SubmitPromotions(r.Context(), body)
	if err != nil {
		h.reject(w, r, err)
		return
	}
	count := res.AdminCount
	writeJSON(w, http.StatusOK, Response{
		Success:    true,
		Message:    fmt.Sprintf("Expiring promotion notice sent for %d promotion(s)", len(res.Event.Promotions)),
		AdminCount: &count,
	})
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, Response{Message: "request body too large"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, Response{Message: "could not read request body"})
		return nil, false
	}
	return body, true
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, notify.ErrInvalidRequest) {
		h.log.Error("ingestion failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal error"})
		return
	}

	msg := "invalid request body"
	var verr *notify.ValidationError
	switch {
	case errors.As(err, &verr) && verr.Has("orderId"):
		msg = "orderId is required"
	case errors.As(err, &verr) && verr.Has("promotions"):
		msg = "promotions must be a non-empty array"
	case errors.As(err, &verr):
		msg = verr.Error()
	case errors.Is(err, notify.ErrMalformedBody):
		msg = "request body must be a JSON object"
	}

	h.log.Info("ingestion rejected", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, http.StatusBadRequest, Response{Message: msg})
}

func (h *Handler) authorized(next http.HandlerFunc) http.HandlerFunc {
	if h.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Relay-Token") == h.token {
			next(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == h.token {
			next(w, r)
			return
		}
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
