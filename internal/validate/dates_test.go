package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDate(t *testing.T) {
	loc := time.UTC
	// A Monday.
	asOf := time.Date(2024, 3, 4, 10, 30, 0, 0, loc)

	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{
			name: "absolute date",
			expr: "2024-05-01",
			want: time.Date(2024, 5, 1, 0, 0, 0, 0, loc),
		},
		{
			name: "absolute date with time",
			expr: "2024-05-01 09:15",
			want: time.Date(2024, 5, 1, 9, 15, 0, 0, loc),
		},
		{
			name: "today",
			expr: "today",
			want: time.Date(2024, 3, 4, 0, 0, 0, 0, loc),
		},
		{
			name: "tomorrow",
			expr: "tomorrow",
			want: time.Date(2024, 3, 5, 0, 0, 0, 0, loc),
		},
		{
			name: "yesterday",
			expr: "yesterday",
			want: time.Date(2024, 3, 3, 0, 0, 0, 0, loc),
		},
		{
			name: "chinese tomorrow",
			expr: "明天",
			want: time.Date(2024, 3, 5, 0, 0, 0, 0, loc),
		},
		{
			name: "bare time is today",
			expr: "15:00",
			want: time.Date(2024, 3, 4, 15, 0, 0, 0, loc),
		},
		{
			name: "tomorrow with time",
			expr: "tomorrow 09:00",
			want: time.Date(2024, 3, 5, 9, 0, 0, 0, loc),
		},
		{
			name: "next monday is strictly next week",
			expr: "next monday",
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, loc),
		},
		{
			name: "friday this week",
			expr: "friday",
			want: time.Date(2024, 3, 8, 0, 0, 0, 0, loc),
		},
		{
			name: "chinese afternoon hour",
			expr: "明天下午3点",
			want: time.Date(2024, 3, 5, 15, 0, 0, 0, loc),
		},
		{
			name: "chinese morning hour",
			expr: "今天上午9点",
			want: time.Date(2024, 3, 4, 9, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDate(tt.expr, asOf, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestResolveDateRejectsGarbage(t *testing.T) {
	loc := time.UTC
	asOf := time.Date(2024, 3, 4, 10, 30, 0, 0, loc)

	for _, expr := range []string{"", "whenever", "the 32nd", "soonish"} {
		_, err := ResolveDate(expr, asOf, loc)
		assert.Error(t, err, "expression %q should not resolve", expr)
	}
}
