package domain

import (
	"fmt"
	"strings"
	"time"
)

// Field is a logical column of a stored record.
type Field string

const (
	FieldOrderID      Field = "order_id"
	FieldTrackingLink Field = "tracking_link"
	FieldCreatedAt    Field = "created_at"
	FieldService      Field = "service"
	FieldCountry      Field = "country"
	FieldCity         Field = "city"
	FieldPostcode     Field = "postcode"
	FieldCustomer     Field = "customer_name"
	FieldStatus       Field = "status"
	FieldTotal        Field = "total"
)

// DefaultColumns is the full layout. Status and total are optional.
var DefaultColumns = Columns{
	FieldOrderID, FieldTrackingLink, FieldCreatedAt, FieldService,
	FieldCountry, FieldCity, FieldPostcode, FieldCustomer, FieldStatus, FieldTotal,
}

var headers = map[Field]string{
	FieldOrderID:      "Order ID",
	FieldTrackingLink: "Tracking Link",
	FieldCreatedAt:    "Created At",
	FieldService:      "Service",
	FieldCountry:      "Country",
	FieldCity:         "City",
	FieldPostcode:     "Postcode",
	FieldCustomer:     "Customer",
	FieldStatus:       "Status",
	FieldTotal:        "Total",
}

// synonyms lists header spellings found in existing sheets, first one wins.
var synonyms = map[Field][]string{
	FieldOrderID:      {"Order ID", "order_id", "Order", "Numero Ordine", "ID Ordine"},
	FieldTrackingLink: {"Tracking Link", "tracking_link", "Link", "Link Tracking", "Tracking"},
	FieldCreatedAt:    {"Created At", "created_at", "Date", "Data", "Data Creazione"},
	FieldService:      {"Service", "service", "Servizio", "Corriere"},
	FieldCountry:      {"Country", "country", "Paese", "Nazione"},
	FieldCity:         {"City", "city", "Città", "Citta"},
	FieldPostcode:     {"Postcode", "postcode", "Zip", "CAP"},
	FieldCustomer:     {"Customer", "customer_name", "Name", "Cliente", "Nome Cliente"},
	FieldStatus:       {"Status", "status", "Stato"},
	FieldTotal:        {"Total", "total", "Totale"},
}

func (f Field) Header() string {
	if h, ok := headers[f]; ok {
		return h
	}
	return string(f)
}

// Columns is the fixed column order of a deployment.
type Columns []Field

func ParseColumns(s string) (Columns, error) {
	var cols Columns
	for _, part := range strings.Split(s, ",") {
		f := Field(strings.TrimSpace(part))
		if f == "" {
			continue
		}
		if _, ok := headers[f]; !ok {
			return nil, fmt.Errorf("unknown column %q", f)
		}
		cols = append(cols, f)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns in %q", s)
	}
	return cols, nil
}

func (c Columns) Headers() []string {
	out := make([]string, len(c))
	for i, f := range c {
		out[i] = f.Header()
	}
	return out
}

// Row projects an order event onto the column layout.
func (c Columns) Row(e OrderEvent) []string {
	values := map[Field]string{
		FieldOrderID:      e.OrderID,
		FieldTrackingLink: e.TrackingLink,
		FieldCreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
		FieldService:      e.Service,
		FieldCountry:      e.Destination.Country,
		FieldCity:         e.Destination.City,
		FieldPostcode:     e.Destination.Postcode,
		FieldCustomer:     e.CustomerName,
		FieldStatus:       e.Status,
		FieldTotal:        e.Total,
	}
	row := make([]string, len(c))
	for i, f := range c {
		row[i] = values[f]
	}
	return row
}

// Record is one stored row read back as header -> value.
type Record map[string]string

// Get returns the value of a logical field under any of its known headers.
func (r Record) Get(f Field) string {
	for _, name := range synonyms[f] {
		if v, ok := r[name]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// NewRecord zips a header row and a value row. Short rows are padded.
func NewRecord(header, values []string) Record {
	rec := make(Record, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(values) {
			rec[h] = values[i]
		} else {
			rec[h] = ""
		}
	}
	return rec
}
