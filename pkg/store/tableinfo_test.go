package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTableName(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  bool
	}{
		{
			name:  "single letter",
			table: "a",
			want:  true,
		},
		{
			name:  "letters digits underscores",
			table: "orders_2024_v1",
			want:  true,
		},
		{
			name:  "mixed case",
			table: "MyTable",
			want:  true,
		},
		{
			name:  "empty rejected",
			table: "",
			want:  false,
		},
		{
			name:  "leading digit rejected",
			table: "1orders",
			want:  false,
		},
		{
			name:  "leading underscore rejected",
			table: "_orders",
			want:  false,
		},
		{
			name:  "space rejected",
			table: "my table",
			want:  false,
		},
		{
			name:  "dash rejected",
			table: "my-table",
			want:  false,
		},
		{
			name:  "dot rejected",
			table: "a.b",
			want:  false,
		},
		{
			name:  "reserved metadata name rejected",
			table: MetaTableName,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTableName(tt.table))
		})
	}
}
