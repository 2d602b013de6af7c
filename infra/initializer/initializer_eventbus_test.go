package initializer

import (
	"io"
	"log/slog"
	"testing"

	infraeventbus "github.com/amirasaad/atm/infra/eventbus"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitEventBus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		bus        *config.EventBus
		wantErr    bool
		wantMemory bool
	}{
		{name: "no section", bus: nil, wantMemory: true},
		{name: "empty driver", bus: &config.EventBus{}, wantMemory: true},
		{name: "memory", bus: &config.EventBus{Driver: config.EventBusMemory}, wantMemory: true},
		{name: "redis without url", bus: &config.EventBus{Driver: config.EventBusRedis}, wantErr: true},
		{
			name:       "unreachable redis",
			bus:        &config.EventBus{Driver: config.EventBusRedis, RedisURL: "redis://127.0.0.1:1", Stream: "atm:events"},
			wantMemory: true,
		},
		{name: "unknown driver", bus: &config.EventBus{Driver: "kafka"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus, err := initEventBus(t.Context(), &config.App{EventBus: tt.bus}, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantMemory {
				assert.IsType(t, &infraeventbus.MemoryEventBus{}, bus)
			}
		})
	}
}
