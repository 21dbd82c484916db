package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectQuery(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  string
	}{
		{"plain table", "crime_records", `FROM "crime_records"`},
		{"schema qualified", "ncrb.violent_trials", `FROM "ncrb"."violent_trials"`},
		{"quotes escaped", `x"; DROP TABLE y; --`, `FROM "x""; DROP TABLE y; --"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := selectQuery(tt.table)
			assert.Contains(t, q, tt.want)
			assert.Contains(t, q, "AS total_count")
		})
	}
}
