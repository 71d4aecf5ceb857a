package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid",
			config: Config{Model: "text-embedding-3-small"},
		},
		{
			name:    "missing model",
			config:  Config{BaseURL: "http://localhost:8080"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	p, err := NewOpenAIProvider(Config{
		BaseURL: "http://localhost:8080/v1",
		Model:   "text-embedding-3-small",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", p.Model())
}

func TestNewOpenAIProvider_InvalidConfig(t *testing.T) {
	_, err := NewOpenAIProvider(Config{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
