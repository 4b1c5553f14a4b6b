package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns(" order_id, tracking_link ,created_at,,country")
	require.NoError(t, err)
	assert.Equal(t, Columns{FieldOrderID, FieldTrackingLink, FieldCreatedAt, FieldCountry}, cols)
	assert.Equal(t, []string{"Order ID", "Tracking Link", "Created At", "Country"}, cols.Headers())

	_, err = ParseColumns("order_id,weight")
	assert.Error(t, err)

	_, err = ParseColumns(" , ")
	assert.Error(t, err)
}

func TestColumnsRow(t *testing.T) {
	ev := OrderEvent{
		OrderID:      "7",
		TrackingLink: "https://t/track/abc",
		CreatedAt:    time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("CEST", 2*3600)),
		Destination:  Destination{Country: "IT", Postcode: "00100"},
		Status:       "paid",
	}
	row := Columns{FieldOrderID, FieldCreatedAt, FieldPostcode, FieldStatus, FieldTotal}.Row(ev)
	assert.Equal(t, []string{"7", "2024-05-06T05:08:09Z", "00100", "paid", ""}, row)
}

func TestRecordGetSynonyms(t *testing.T) {
	rec := Record{
		"Numero Ordine": "55",
		"CAP":           " 20100 ",
		"Città":         "Milano",
		"Order ID":      "",
	}
	assert.Equal(t, "55", rec.Get(FieldOrderID))
	assert.Equal(t, "20100", rec.Get(FieldPostcode))
	assert.Equal(t, "Milano", rec.Get(FieldCity))
	assert.Equal(t, "", rec.Get(FieldCountry))
}

func TestNewRecordPadsShortRows(t *testing.T) {
	rec := NewRecord([]string{"Order ID", "", "Country"}, []string{"1"})
	assert.Equal(t, Record{"Order ID": "1", "Country": ""}, rec)
}
