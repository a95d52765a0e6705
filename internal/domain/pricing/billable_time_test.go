package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/billar-api/internal/domain/pricing"
)

func TestBillableMinutes_Tramos(t *testing.T) {
	cases := []struct {
		seconds int64
		want    int64
	}{
		{0, 15},
		{1, 15},
		{900, 15},
		{901, 30},
		{1800, 30},
		{1801, 60},
		{3000, 60},
		{3600, 60},
		{3601, 75},
		{4500, 75},
		{4501, 90},
		{5400, 90},
		{7200, 120},
		{7201, 135},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, pricing.BillableMinutes(tc.seconds), "segundos=%d", tc.seconds)
	}
}

func TestBillableMinutes_Monotono(t *testing.T) {
	prev := pricing.BillableMinutes(0)
	for s := int64(1); s <= 4*3600; s++ {
		cur := pricing.BillableMinutes(s)
		if cur < prev {
			t.Fatalf("no monótono en %d: %d < %d", s, cur, prev)
		}
		prev = cur
	}
}

func TestBillableMinutes_NegativoCuentaComoCero(t *testing.T) {
	assert.Equal(t, int64(15), pricing.BillableMinutes(-30))
}

func TestTimeAmount(t *testing.T) {
	rate := decimal.RequireFromString("20.00")
	assert.True(t, pricing.TimeAmount(60, rate).Equal(decimal.RequireFromString("20.00")))
	assert.True(t, pricing.TimeAmount(15, rate).Equal(decimal.RequireFromString("5.00")))
	assert.True(t, pricing.TimeAmount(75, rate).Equal(decimal.RequireFromString("25.00")))

	odd := decimal.RequireFromString("13.33")
	// 45/60 * 13.33 = 9.9975 -> 10.00
	assert.Equal(t, "10", pricing.TimeAmount(45, odd).String())
}

func TestQuoteBetween_CincuentaMinutos(t *testing.T) {
	start := time.Date(2025, 8, 1, 20, 0, 0, 0, time.UTC)
	q := pricing.QuoteBetween(start, start.Add(50*time.Minute), decimal.NewFromInt(20))
	assert.Equal(t, int64(3000), q.ElapsedSeconds)
	assert.Equal(t, int64(60), q.BillableMinutes)
	assert.True(t, q.Amount.Equal(decimal.NewFromInt(20)))
}

func TestBillableHours(t *testing.T) {
	assert.Equal(t, "1.25", pricing.BillableHours(75).String())
	assert.Equal(t, "0.25", pricing.BillableHours(15).String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:50:00", pricing.FormatDuration(3000))
	assert.Equal(t, "01:00:01", pricing.FormatDuration(3601))
	assert.Equal(t, "00:00:00", pricing.FormatDuration(-5))
}
