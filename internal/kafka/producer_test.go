package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

func TestRecordedOrderMessage(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e := domain.OrderEvent{
		OrderID:     "123",
		Status:      "completed",
		Token:       "ab12cd34",
		Destination: domain.Destination{City: "Rome", Postcode: "00100", Country: "IT"},
	}

	m, err := recordedOrderMessage(e, now)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab12cd34"), m.Key)

	headers := map[string]string{}
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "application/json", headers["content-type"])
	assert.Equal(t, "order.recorded", headers["event"])
	assert.Equal(t, "completed", headers["order-status"])

	var out recordedMessage
	require.NoError(t, json.Unmarshal(m.Value, &out))
	assert.Equal(t, "order.recorded", out.Event)
	assert.True(t, now.Equal(out.RecordedAt))
	assert.Equal(t, "123", out.Order.OrderID)
	assert.Equal(t, "00100", out.Order.Destination.Postcode)
}
