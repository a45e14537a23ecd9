package repair

import (
	"fmt"
	"sort"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
)

// Strategy recovers the title of a record whose title tag was mis-segmented.
type Strategy interface {
	Name() string
	Repair(record domain.AttributeMap) (domain.AttributeMap, error)
}

// allowedKeys are the attribute names a well-formed record may carry besides its title.
var allowedKeys = map[string]struct{}{
	"author":    {},
	"authors":   {},
	"pages":     {},
	"id":        {},
	"year":      {},
	"booktitle": {},
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a registry holding the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	r.Register(Heuristic{})
	r.Register(Markup{})
	return r
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("repair strategy %s is not registered", name)
}

// spuriousKey returns the single attribute key outside the allow-list.
func spuriousKey(record domain.AttributeMap) (string, error) {
	if v, ok := record.Fields["title"]; ok && v == "" {
		record.Delete("title")
	}

	var candidates []string
	for key := range record.Fields {
		if _, ok := allowedKeys[key]; !ok {
			candidates = append(candidates, key)
		}
	}

	if len(candidates) != 1 {
		sort.Strings(candidates)
		return "", apperr.ParseRejectionf("expected exactly one title candidate, found %d %q", len(candidates), candidates)
	}
	return candidates[0], nil
}

// clone copies the record so repair never mutates the caller's maps.
func clone(record domain.AttributeMap) domain.AttributeMap {
	out := domain.NewAttributeMap()
	for k, v := range record.Fields {
		out.Fields[k] = v
	}
	for k, v := range record.Names {
		out.Names[k] = v
	}
	for k, v := range record.Sources {
		out.Sources[k] = v
	}
	out.Authors = append([]string(nil), record.Authors...)
	return out
}
