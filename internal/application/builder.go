package application

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

var DefaultAcceptedStatuses = []string{"processing", "completed", "on-hold", "paid"}

const (
	DefaultService  = "APC Priority DDU"
	fallbackOrderID = "test-order"
	tokenLen        = 8
)

// timestamp fields in priority order: paid, fulfilled, created
var timestampFields = []string{"date_paid", "date_completed", "date_created"}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type BuilderConfig struct {
	AcceptedStatuses []string
	DefaultService   string
	TrackingBaseURL  string
}

// Builder maps a normalized payload to an order event.
type Builder struct {
	accepted       map[string]struct{}
	defaultService string
	baseURL        string
	newToken       func() string
}

func NewBuilder(cfg BuilderConfig) *Builder {
	statuses := cfg.AcceptedStatuses
	if len(statuses) == 0 {
		statuses = DefaultAcceptedStatuses
	}
	accepted := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		accepted[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	svc := cfg.DefaultService
	if svc == "" {
		svc = DefaultService
	}
	return &Builder{
		accepted:       accepted,
		defaultService: svc,
		baseURL:        strings.TrimRight(cfg.TrackingBaseURL, "/"),
		newToken:       newToken,
	}
}

func newToken() string {
	return uuid.New().String()[:tokenLen]
}

// Accepts reports whether status is actionable.
func (b *Builder) Accepts(status string) bool {
	_, ok := b.accepted[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Build returns false when the payload status is not actionable.
func (b *Builder) Build(p domain.Payload, now time.Time) (domain.OrderEvent, bool) {
	status := strings.ToLower(strings.TrimSpace(text(p["status"])))
	if !b.Accepts(status) {
		return domain.OrderEvent{}, false
	}

	orderID := firstNonEmpty(text(p["id"]), text(p["number"]), fallbackOrderID)

	createdAt := now.UTC()
	for _, f := range timestampFields {
		if t, ok := ParseTime(text(p[f])); ok {
			createdAt = t
			break
		}
	}

	addr := mapping(p["shipping"])
	other := mapping(p["billing"])
	if allEmpty(addr) {
		addr, other = other, addr
	}
	name := fullName(addr)
	if name == "" {
		name = fullName(other)
	}

	token := b.newToken()
	return domain.OrderEvent{
		OrderID:   orderID,
		Status:    status,
		CreatedAt: createdAt,
		Destination: domain.Destination{
			City:     strings.TrimSpace(text(addr["city"])),
			Postcode: strings.TrimSpace(text(addr["postcode"])),
			Country:  strings.TrimSpace(text(addr["country"])),
		},
		CustomerName: name,
		Service:      b.service(p["shipping_lines"]),
		Total:        text(p["total"]),
		Token:        token,
		TrackingLink: b.baseURL + "/" + token,
	}, true
}

func (b *Builder) service(v any) string {
	lines, ok := v.([]any)
	if !ok || len(lines) == 0 || lines[0] == nil {
		return b.defaultService
	}
	if m, ok := lines[0].(map[string]any); ok {
		return firstNonEmpty(text(m["method_title"]), text(m["name"]), b.defaultService)
	}
	return firstNonEmpty(text(lines[0]), b.defaultService)
}

// ParseTime accepts ISO-8601 with or without a trailing Z and a few common
// text layouts. Zone-less values are UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func fullName(m map[string]any) string {
	return strings.TrimSpace(strings.TrimSpace(text(m["first_name"])) + " " + strings.TrimSpace(text(m["last_name"])))
}

func mapping(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func allEmpty(m map[string]any) bool {
	for _, v := range m {
		if strings.TrimSpace(text(v)) != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// text stringifies scalar JSON values; containers become "".
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
