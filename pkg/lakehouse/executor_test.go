package lakehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero clamps to max", 0, MaxQueryLimit},
		{"negative clamps to max", -5, MaxQueryLimit},
		{"over max clamps to max", MaxQueryLimit + 1, MaxQueryLimit},
		{"in range passes through", 50, 50},
		{"exactly max passes through", MaxQueryLimit, MaxQueryLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, effectiveLimit(tt.limit))
		})
	}
}

func TestBoundQuery(t *testing.T) {
	got := boundQuery("SELECT * FROM dbo.orders", 25)
	assert.Equal(t, "SELECT TOP (25) * FROM (SELECT * FROM dbo.orders) AS _limited", got)

	got = boundQuery("SELECT 1", 0)
	assert.Equal(t, "SELECT TOP (1000) * FROM (SELECT 1) AS _limited", got)
}
