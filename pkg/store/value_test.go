package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewValue(t *testing.T) {
	data := map[string]any{"item": "book", "qty": "3"}
	v := NewValue(data)

	assert.Equal(t, data, v.Data)
	assert.True(t, v.CreatedAt.IsZero(), "NewValue must leave CreatedAt for the table to fill")
	assert.True(t, v.UpdatedAt.IsZero(), "NewValue must leave UpdatedAt for the table to fill")
}

func TestValueValidate(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		wantErr error
	}{
		{
			name:  "mapping data is valid",
			value: NewValue(map[string]any{"f": "v"}),
		},
		{
			name:  "empty mapping is valid",
			value: NewValue(map[string]any{}),
		},
		{
			name:    "nil data rejected",
			value:   Value{},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "timestamps alone do not make a value",
			value:   Value{CreatedAt: time.Now(), UpdatedAt: time.Now()},
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.value.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
