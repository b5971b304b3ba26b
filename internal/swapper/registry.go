package swapper

import (
	"fmt"
	"slices"

	"github.com/gemwalletcom/swapper/internal/chain"
)

// Registry is the immutable set of providers in priority order.
// It is built once with RegistryBuilder and safe for concurrent reads.
type Registry struct {
	providers []Provider
	index     map[ProviderID]int
	chains    []chain.Chain
}

type RegistryBuilder struct {
	providers []Provider
	priority  []ProviderID
}

func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

func (b *RegistryBuilder) Add(providers ...Provider) *RegistryBuilder {
	b.providers = append(b.providers, providers...)
	return b
}

// Priority sets the tie-break order. Providers not listed keep their
// registration order after the listed ones.
func (b *RegistryBuilder) Priority(ids ...ProviderID) *RegistryBuilder {
	b.priority = append([]ProviderID(nil), ids...)
	return b
}

func (b *RegistryBuilder) Build() (*Registry, error) {
	seen := make(map[ProviderID]Provider, len(b.providers))
	for _, p := range b.providers {
		id := p.Provider().ID
		if id == "" {
			return nil, fmt.Errorf("provider with empty id")
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate provider: %s", id)
		}
		seen[id] = p
	}

	ordered := make([]Provider, 0, len(b.providers))
	used := make(map[ProviderID]bool, len(b.providers))
	for _, id := range b.priority {
		p, ok := seen[id]
		if !ok {
			return nil, fmt.Errorf("priority references unknown provider: %s", id)
		}
		if used[id] {
			continue
		}
		ordered = append(ordered, p)
		used[id] = true
	}
	for _, p := range b.providers {
		if !used[p.Provider().ID] {
			ordered = append(ordered, p)
		}
	}

	r := &Registry{
		providers: ordered,
		index:     make(map[ProviderID]int, len(ordered)),
	}
	chainSet := map[chain.Chain]struct{}{}
	for i, p := range ordered {
		r.index[p.Provider().ID] = i
		for _, c := range p.SupportedChains() {
			chainSet[c] = struct{}{}
		}
	}
	for c := range chainSet {
		r.chains = append(r.chains, c)
	}
	chain.Sort(r.chains)
	return r, nil
}

// EligibleProviders returns the providers able to quote from -> to, in
// priority order. An empty preferred list means no preference.
func (r *Registry) EligibleProviders(from, to chain.Chain, preferred []ProviderID) []Provider {
	var res []Provider
	for _, p := range r.providers {
		if len(preferred) > 0 && !slices.Contains(preferred, p.Provider().ID) {
			continue
		}
		if supportsPair(p, from, to) {
			res = append(res, p)
		}
	}
	return res
}

func (r *Registry) Provider(id ProviderID) (Provider, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.providers[i], true
}

// Priority returns the tie-break rank of a provider, lower wins.
func (r *Registry) Priority(id ProviderID) int {
	if i, ok := r.index[id]; ok {
		return i
	}
	return len(r.providers)
}

func (r *Registry) Providers() []ProviderType {
	res := make([]ProviderType, 0, len(r.providers))
	for _, p := range r.providers {
		res = append(res, p.Provider())
	}
	return res
}

// SupportedChains is the deduplicated union of every provider's chains.
func (r *Registry) SupportedChains() []chain.Chain {
	return slices.Clone(r.chains)
}

func (r *Registry) IsChainSupported(c chain.Chain) bool {
	_, found := slices.BinarySearch(r.chains, c)
	return found
}

// SupportedChainsForAsset lists the destination chains reachable from asset
// by at least one provider.
func (r *Registry) SupportedChainsForAsset(asset chain.AssetID) []chain.Chain {
	var res []chain.Chain
	for _, to := range r.chains {
		if len(r.EligibleProviders(asset.Chain, to, nil)) > 0 {
			res = append(res, to)
		}
	}
	return res
}
