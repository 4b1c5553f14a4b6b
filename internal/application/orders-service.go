package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
	"github.com/RaikyD/wc-tracking-service/internal/logger"
	"github.com/RaikyD/wc-tracking-service/internal/metrics"
	"github.com/RaikyD/wc-tracking-service/internal/repository"
	"github.com/RaikyD/wc-tracking-service/internal/timeline"
	"github.com/RaikyD/wc-tracking-service/internal/webhook"
)

type Outcome string

const (
	OutcomeRecorded Outcome = "success"
	OutcomeIgnored  Outcome = "ignored"
	OutcomePing     Outcome = "ping acknowledged"
)

type Result struct {
	Outcome Outcome
	Event   domain.OrderEvent
}

// Publisher is notified after a row is stored.
type Publisher interface {
	PublishOrder(ctx context.Context, e domain.OrderEvent) error
}

type TrackingView struct {
	timeline.Tracking
	History      []timeline.Event   `json:"history"`
	OrderID      string             `json:"order_id"`
	Service      string             `json:"service"`
	Customer     string             `json:"customer_name,omitempty"`
	OrderStatus  string             `json:"order_status,omitempty"`
	Total        string             `json:"total,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	TrackingLink string             `json:"tracking_link"`
	ShipTo       domain.Destination `json:"ship_to"`
}

type OrdersService struct {
	store     repository.RecordStore
	builder   *Builder
	timeline  *timeline.Synthesizer
	columns   domain.Columns
	secret    string
	publisher Publisher
	now       func() time.Time
}

func NewOrdersService(store repository.RecordStore, b *Builder, tl *timeline.Synthesizer, cols domain.Columns, secret string) *OrdersService {
	if len(cols) == 0 {
		cols = domain.DefaultColumns
	}
	return &OrdersService{
		store:    store,
		builder:  b,
		timeline: tl,
		columns:  cols,
		secret:   secret,
		now:      time.Now,
	}
}

func (s *OrdersService) SetPublisher(p Publisher) {
	s.publisher = p
}

func (s *OrdersService) SetClock(now func() time.Time) {
	s.now = now
}

// Receive runs one webhook delivery through verify, normalize, build and append.
// Pings are acknowledged before the signature check.
func (s *OrdersService) Receive(ctx context.Context, contentType string, body []byte, signature string) (Result, error) {
	payload, err := webhook.Normalize(contentType, body)
	if errors.Is(err, domain.ErrPing) {
		metrics.WebhooksTotal.WithLabelValues(string(OutcomePing)).Inc()
		logger.Info("webhook ping acknowledged")
		return Result{Outcome: OutcomePing}, nil
	}

	if verr := s.verify(body, signature); verr != nil {
		metrics.WebhooksTotal.WithLabelValues("unauthorized").Inc()
		return Result{}, verr
	}
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues("bad_request").Inc()
		return Result{}, err
	}

	return s.Accept(ctx, payload)
}

func (s *OrdersService) verify(body []byte, signature string) error {
	if s.secret == "" {
		return nil
	}
	if signature == "" {
		return domain.ErrMissingSignature
	}
	if !webhook.Verify(s.secret, body, signature) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Accept appends one row for an actionable payload.
func (s *OrdersService) Accept(ctx context.Context, p domain.Payload) (Result, error) {
	ev, ok := s.builder.Build(p, s.now())
	if !ok {
		metrics.WebhooksTotal.WithLabelValues(string(OutcomeIgnored)).Inc()
		logger.Info("order status not actionable", "status", p["status"], "id", p["id"])
		return Result{Outcome: OutcomeIgnored}, nil
	}

	if err := s.store.Append(ctx, s.columns.Row(ev)); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("append").Inc()
		logger.Error("store append failed", "order_id", ev.OrderID, "err", err)
		if errors.Is(err, domain.ErrStoreAppend) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", domain.ErrStoreAppend, err)
	}
	metrics.WebhooksTotal.WithLabelValues(string(OutcomeRecorded)).Inc()
	logger.Info("order recorded", "order_id", ev.OrderID, "token", ev.Token, "country", ev.Destination.Country)

	if s.publisher != nil {
		if err := s.publisher.PublishOrder(ctx, ev); err != nil {
			logger.Warn("publish recorded order failed", "order_id", ev.OrderID, "err", err)
		}
	}
	return Result{Outcome: OutcomeRecorded, Event: ev}, nil
}

// Track finds the record holding token and synthesizes its timeline as of now.
func (s *OrdersService) Track(ctx context.Context, token string) (*TrackingView, error) {
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("read").Inc()
		if errors.Is(err, domain.ErrStoreRead) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
	}

	rec, err := Locate(records, token)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	metrics.LookupsTotal.WithLabelValues("found").Inc()

	now := s.now()
	createdAt, ok := ParseTime(rec.Get(domain.FieldCreatedAt))
	if !ok {
		logger.Warn("record has no usable created_at, using now", "token", token)
		createdAt = now.UTC()
	}
	dest := domain.Destination{
		City:     rec.Get(domain.FieldCity),
		Postcode: rec.Get(domain.FieldPostcode),
		Country:  rec.Get(domain.FieldCountry),
	}
	tr := s.timeline.Synthesize(createdAt, now, dest)

	return &TrackingView{
		Tracking:     tr,
		History:      timeline.Occurred(tr.Events),
		OrderID:      rec.Get(domain.FieldOrderID),
		Service:      rec.Get(domain.FieldService),
		Customer:     rec.Get(domain.FieldCustomer),
		OrderStatus:  rec.Get(domain.FieldStatus),
		Total:        rec.Get(domain.FieldTotal),
		CreatedAt:    createdAt,
		TrackingLink: rec.Get(domain.FieldTrackingLink),
		ShipTo:       dest,
	}, nil
}
