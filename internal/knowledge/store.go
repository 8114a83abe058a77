package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Store is read-only lookup over the namespaces.
type Store interface {
	Namespaces() []string
	Get(namespace string) []Item
}

// Summary is the per-namespace overview exposed to callers.
type Summary struct {
	Namespace string   `json:"namespace"`
	ItemCount int      `json:"item_count"`
	Metrics   []string `json:"metrics"`
}

// StaticStore serves a Catalogue from memory. It is safe for concurrent use
// because nothing mutates it after construction.
type StaticStore struct {
	order       []string
	namespaces  map[string]Namespace
	principles  []Principle
	fingerprint string
}

// NewStaticStore indexes the catalogue.
func NewStaticStore(cat *Catalogue) *StaticStore {
	s := &StaticStore{
		namespaces: make(map[string]Namespace, len(cat.Namespaces)),
		principles: append([]Principle(nil), cat.Principles...),
	}
	h := sha256.New()
	for _, ns := range cat.Namespaces {
		s.order = append(s.order, ns.ID)
		s.namespaces[ns.ID] = ns
		h.Write([]byte(ns.ID))
		for _, item := range ns.Items {
			h.Write([]byte{0})
			h.Write([]byte(item.ID))
			h.Write([]byte{0})
			h.Write([]byte(item.Content))
			h.Write([]byte(strings.Join(item.Metrics, ",")))
		}
		h.Write([]byte{'\n'})
	}
	s.fingerprint = hex.EncodeToString(h.Sum(nil))[:16]
	return s
}

// Namespaces returns the namespace ids in catalogue order.
func (s *StaticStore) Namespaces() []string {
	return append([]string(nil), s.order...)
}

// Get returns a copy of the namespace's items; unknown namespaces yield nil.
func (s *StaticStore) Get(namespace string) []Item {
	ns, ok := s.namespaces[namespace]
	if !ok {
		return nil
	}
	return append([]Item(nil), ns.Items...)
}

// Namespace returns the metadata for one namespace.
func (s *StaticStore) Namespace(id string) (Namespace, bool) {
	ns, ok := s.namespaces[id]
	return ns, ok
}

// Catalogue returns all namespace metadata in order.
func (s *StaticStore) Catalogue() []Namespace {
	out := make([]Namespace, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.namespaces[id])
	}
	return out
}

func (s *StaticStore) Principles() []Principle {
	return append([]Principle(nil), s.principles...)
}

// Fingerprint changes whenever namespace content changes.
func (s *StaticStore) Fingerprint() string {
	return s.fingerprint
}

// Summary counts items and lists the distinct metric tags, sorted.
func (s *StaticStore) Summary(namespace string) Summary {
	items := s.Get(namespace)
	seen := map[string]bool{}
	metrics := []string{}
	for _, item := range items {
		for _, m := range item.Metrics {
			if !seen[m] {
				seen[m] = true
				metrics = append(metrics, m)
			}
		}
	}
	sort.Strings(metrics)
	return Summary{Namespace: namespace, ItemCount: len(items), Metrics: metrics}
}

// Search implements Backend with plain truncation in store order; the query
// does not influence the result.
func (s *StaticStore) Search(_ context.Context, namespace, _ string, limit int) ([]Item, error) {
	items := s.Get(namespace)
	if limit <= 0 {
		return []Item{}, nil
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
