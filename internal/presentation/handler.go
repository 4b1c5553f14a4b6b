package presentation

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/RaikyD/wc-tracking-service/internal/application"
	"github.com/RaikyD/wc-tracking-service/internal/domain"
	"github.com/RaikyD/wc-tracking-service/internal/logger"
	"github.com/RaikyD/wc-tracking-service/internal/presentation/helpers"
	"github.com/RaikyD/wc-tracking-service/internal/webhook"
)

const (
	maxBodyBytes  = 1 << 20
	previewLength = 500
)

type OrdersHandler struct {
	svc *application.OrdersService
}

func NewOrdersHandler(svc *application.OrdersService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/webhook", h.Webhook)
	r.Post("/webhook-inspect", h.Inspect)
	r.Get("/api/track/{token}", h.Track)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Webhook accepts a WooCommerce order delivery. The body is read raw so the
// signature is checked over exactly what was sent.
func (h *OrdersHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		helpers.WriteError(w, fmt.Errorf("%w: read body: %v", domain.ErrEmptyOrUnparseable, err))
		return
	}

	res, err := h.svc.Receive(r.Context(), r.Header.Get("Content-Type"), body, r.Header.Get(webhook.SignatureHeader))
	if err != nil {
		status := helpers.WriteError(w, err)
		if status >= http.StatusInternalServerError {
			logger.Error("webhook failed", "err", err)
		} else {
			logger.Warn("webhook rejected", "status", status, "err", err)
		}
		return
	}

	switch res.Outcome {
	case application.OutcomeRecorded:
		helpers.WriteJSON(w, http.StatusOK, map[string]string{
			"status":        string(res.Outcome),
			"tracking_link": res.Event.TrackingLink,
			"token":         res.Event.Token,
			"order_id":      res.Event.OrderID,
		})
	default:
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": string(res.Outcome)})
	}
}

func (h *OrdersHandler) Track(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	view, err := h.svc.Track(r.Context(), token)
	if err != nil {
		if helpers.WriteError(w, err) >= http.StatusInternalServerError {
			logger.Error("track failed", "token", token, "err", err)
		}
		return
	}
	helpers.WriteJSON(w, http.StatusOK, view)
}

// Inspect echoes what arrived, for debugging senders that post odd bodies.
func (h *OrdersHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		helpers.WriteError(w, fmt.Errorf("%w: read body: %v", domain.ErrEmptyOrUnparseable, err))
		return
	}
	preview := body
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	p := string(preview)
	if !utf8.ValidString(p) {
		p = strings.ToValidUTF8(p, "�")
	}
	logger.Info("webhook inspect", "content_type", r.Header.Get("Content-Type"), "length", len(body))
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"content_type":  r.Header.Get("Content-Type"),
		"has_signature": r.Header.Get(webhook.SignatureHeader) != "",
		"length":        len(body),
		"preview":       p,
	})
}
