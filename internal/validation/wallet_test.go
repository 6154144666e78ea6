package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWallet(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "mixed case is lowered",
			input: "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
			want:  "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		},
		{
			name:  "surrounding whitespace is trimmed",
			input: "  0xab5801a7d398351b8be11c439e05c5b3259aec9b ",
			want:  "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		},
		{
			name:    "too short",
			input:   "0xab5801",
			wantErr: true,
		},
		{
			name:    "not hex",
			input:   "0xZZ5801a7d398351b8be11c439e05c5b3259aec9b",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeWallet(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWallet)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
