package exchanges

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterflow/internal/domain/entities"
)

func TestRegistry_Lookup(t *testing.T) {
	logger := slog.Default()
	registry := NewRegistry(
		NewBinanceSource("", "", false, logger),
		NewOKXSource(logger),
		NewBybitSource(logger),
	)

	for _, exchange := range []entities.Exchange{entities.ExchangeBinance, entities.ExchangeOKX, entities.ExchangeBybit} {
		source, err := registry.Lookup(exchange)
		require.NoError(t, err)
		assert.Equal(t, exchange, source.Exchange())
	}

	_, err := registry.Lookup(entities.Exchange("kraken"))
	assert.ErrorIs(t, err, entities.ErrUnknownExchange)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	logger := slog.Default()
	registry := NewRegistry(NewOKXSource(logger))

	replacement := NewOKXSourceWithBaseURL("http://localhost:9999", logger)
	registry.Register(replacement)

	source, err := registry.Lookup(entities.ExchangeOKX)
	require.NoError(t, err)
	assert.Same(t, replacement, source)
}
