package exchanges

import (
	"clusterflow/internal/domain/entities"
	"clusterflow/internal/domain/services"
)

// Registry maps an exchange identifier to its connector. Adding an exchange
// means registering one implementation, not widening a conditional.
type Registry struct {
	sources map[entities.Exchange]services.TradeSource
}

func NewRegistry(sources ...services.TradeSource) *Registry {
	r := &Registry{
		sources: make(map[entities.Exchange]services.TradeSource, len(sources)),
	}
	for _, source := range sources {
		r.Register(source)
	}
	return r
}

func (r *Registry) Register(source services.TradeSource) {
	r.sources[source.Exchange()] = source
}

func (r *Registry) Lookup(exchange entities.Exchange) (services.TradeSource, error) {
	source, ok := r.sources[exchange]
	if !ok {
		return nil, entities.ErrUnknownExchange
	}
	return source, nil
}
