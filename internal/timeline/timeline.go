// Package timeline builds the synthetic shipment progress shown to customers.
// Nothing here comes from a carrier: events are a fixed template laid over
// the order's creation time.
package timeline

import (
	"sort"
	"strings"
	"time"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

const (
	day = 24 * time.Hour

	EventDateLayout  = "01/02/2006 03:04 PM UTC"
	WindowDateLayout = "January 02, 2006"

	DefaultLocale = "default"
)

type TemplateEntry struct {
	Label     string `yaml:"label" json:"label"`
	DayOffset int    `yaml:"day" json:"day"`
	Location  string `yaml:"location" json:"location"`
}

// Threshold maps a minimum number of elapsed days to a status label.
type Threshold struct {
	MinDays int    `yaml:"min_days" json:"min_days"`
	Label   string `yaml:"label" json:"label"`
}

type Config struct {
	Thresholds  []Threshold `yaml:"thresholds"`
	WindowStart int         `yaml:"window_start_days"`
	WindowEnd   int         `yaml:"window_end_days"`
	// Templates is keyed by upper-case country code plus DefaultLocale.
	// The last entry of each template is the delivery event.
	Templates map[string][]TemplateEntry `yaml:"templates"`
}

type Event struct {
	Label     string    `json:"label"`
	DayOffset int       `json:"day_offset"`
	Date      time.Time `json:"date"`
	DateText  string    `json:"date_text"`
	Location  string    `json:"location"`
	Occurred  bool      `json:"occurred"`
}

type Window struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	StartText string    `json:"start_text"`
	EndText   string    `json:"end_text"`
}

type Tracking struct {
	StatusLabel       string  `json:"status_label"`
	Step              int     `json:"step"`
	Steps             int     `json:"steps"`
	ElapsedDays       int     `json:"elapsed_days"`
	EstimatedDelivery Window  `json:"estimated_delivery"`
	Events            []Event `json:"events"`
}

func DefaultConfig() Config {
	return Config{
		Thresholds: []Threshold{
			{MinDays: 21, Label: "delivered"},
			{MinDays: 11, Label: "in_transit"},
			{MinDays: 0, Label: "preparing"},
		},
		WindowStart: 19,
		WindowEnd:   21,
		Templates: map[string][]TemplateEntry{
			DefaultLocale: {
				{"Label created", 0, ""},
				{"Arrived at APC facility", 1, "Bell, CA"},
				{"Processed at APC facility", 1, "Bell, CA"},
				{"Departed APC facility", 2, "Bell, CA"},
				{"In transit", 3, "Los Angeles, US"},
				{"Arrived at airport", 4, "Los Angeles, US"},
				{"Departed to destination country", 5, "New York, US"},
				{"Arrived in destination country", 7, ""},
				{"Customs clearance", 8, ""},
				{"At local post office", 10, ""},
				{"Delivery attempted", 12, ""},
				{"Delivery attempted", 15, ""},
				{"Delivery attempted", 18, ""},
				{"DELIVERED", 21, ""},
			},
			"IT": {
				{"Etichetta creata", 0, ""},
				{"Ordine arrivato APC", 1, "Bell, CA"},
				{"Processato APC", 1, "Bell, CA"},
				{"Ordine lasciato APC", 2, "Bell, CA"},
				{"In transito", 3, "Los Angeles, US"},
				{"Arrivo aeroporto", 4, "Los Angeles, US"},
				{"In viaggio verso Italia", 5, "New York, US"},
				{"Arrivato Italia", 7, "Milan, IT"},
				{"Dogana", 8, "Malpensa, IT"},
				{"Ufficio postale", 10, "IT"},
				{"Tentativo consegna", 12, "IT"},
				{"Tentativo consegna", 15, "IT"},
				{"Tentativo consegna", 18, "IT"},
				{"CONSEGNATO", 21, ""},
			},
		},
	}
}

// Synthesizer is safe for concurrent use; it never mutates its config.
type Synthesizer struct {
	thresholds  []Threshold
	windowStart int
	windowEnd   int
	templates   map[string][]TemplateEntry
}

func New(cfg Config) *Synthesizer {
	def := DefaultConfig()
	if len(cfg.Thresholds) == 0 {
		cfg.Thresholds = def.Thresholds
	}
	if len(cfg.Templates) == 0 {
		cfg.Templates = def.Templates
	}
	if cfg.WindowStart == 0 && cfg.WindowEnd == 0 {
		cfg.WindowStart, cfg.WindowEnd = def.WindowStart, def.WindowEnd
	}

	th := append([]Threshold(nil), cfg.Thresholds...)
	sort.SliceStable(th, func(i, j int) bool { return th[i].MinDays > th[j].MinDays })

	templates := make(map[string][]TemplateEntry, len(cfg.Templates))
	for k, v := range cfg.Templates {
		key := strings.ToUpper(strings.TrimSpace(k))
		if strings.EqualFold(k, DefaultLocale) {
			key = DefaultLocale
		}
		templates[key] = append([]TemplateEntry(nil), v...)
	}
	if _, ok := templates[DefaultLocale]; !ok {
		templates[DefaultLocale] = def.Templates[DefaultLocale]
	}

	return &Synthesizer{
		thresholds:  th,
		windowStart: cfg.WindowStart,
		windowEnd:   cfg.WindowEnd,
		templates:   templates,
	}
}

// TemplateFor returns the event table for a country, or the default table.
func (s *Synthesizer) TemplateFor(country string) []TemplateEntry {
	if t, ok := s.templates[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return t
	}
	return s.templates[DefaultLocale]
}

// ElapsedDays is the number of whole days between createdAt and now, never negative.
func ElapsedDays(createdAt, now time.Time) int {
	d := now.Sub(createdAt)
	if d <= 0 {
		return 0
	}
	return int(d / day)
}

// Synthesize is a pure function of its inputs and the synthesizer config.
func (s *Synthesizer) Synthesize(createdAt, now time.Time, dest domain.Destination) Tracking {
	createdAt = createdAt.UTC()
	elapsed := ElapsedDays(createdAt, now)

	label, step := s.status(elapsed)

	template := s.TemplateFor(dest.Country)
	events := make([]Event, 0, len(template))
	for i, entry := range template {
		loc := entry.Location
		if i == len(template)-1 {
			loc = strings.TrimSpace(dest.Postcode + " " + dest.Country)
		}
		at := createdAt.Add(time.Duration(entry.DayOffset) * day)
		events = append(events, Event{
			Label:     entry.Label,
			DayOffset: entry.DayOffset,
			Date:      at,
			DateText:  at.Format(EventDateLayout),
			Location:  loc,
			Occurred:  elapsed >= entry.DayOffset,
		})
	}

	start := createdAt.Add(time.Duration(s.windowStart) * day)
	end := createdAt.Add(time.Duration(s.windowEnd) * day)

	return Tracking{
		StatusLabel: label,
		Step:        step,
		Steps:       len(s.thresholds),
		ElapsedDays: elapsed,
		EstimatedDelivery: Window{
			Start:     start,
			End:       end,
			StartText: start.Format(WindowDateLayout),
			EndText:   end.Format(WindowDateLayout),
		},
		Events: events,
	}
}

// status walks thresholds highest first. Step 1 is the lowest tier.
func (s *Synthesizer) status(elapsed int) (string, int) {
	for i, t := range s.thresholds {
		if elapsed >= t.MinDays {
			return t.Label, len(s.thresholds) - i
		}
	}
	return "", 0
}

// Occurred keeps only the events that already happened, newest first.
func Occurred(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Occurred {
			out = append(out, events[i])
		}
	}
	return out
}
