package provider

import (
	"github.com/kirillkom/mail-triage/internal/core/domain"
	"github.com/kirillkom/mail-triage/internal/core/ports"
)

// Registry is the closed set of backends a request can select.
type Registry struct {
	routes map[domain.ProviderKind]ports.ProviderRoute
}

func NewRegistry(remote, zeroShot ports.Provider) *Registry {
	r := &Registry{routes: make(map[domain.ProviderKind]ports.ProviderRoute, 2)}
	if remote != nil {
		r.routes[domain.ProviderRemoteLLM] = ports.ProviderRoute{
			Kind:        domain.ProviderRemoteLLM,
			Provider:    remote,
			Tag:         domain.ProviderTagRemoteLLM,
			FallbackTag: domain.ProviderTagRemoteLLMFallback,
		}
	}
	if zeroShot != nil {
		r.routes[domain.ProviderLocalZeroShot] = ports.ProviderRoute{
			Kind:        domain.ProviderLocalZeroShot,
			Provider:    zeroShot,
			Tag:         domain.ProviderTagLocalZeroShot,
			FallbackTag: domain.ProviderTagLocalFallback,
		}
	}
	return r
}

func (r *Registry) Resolve(tag string) (ports.ProviderRoute, bool) {
	kind := domain.ParseProviderKind(tag)
	if kind == domain.ProviderUnknown {
		return ports.ProviderRoute{}, false
	}
	route, ok := r.routes[kind]
	return route, ok
}
