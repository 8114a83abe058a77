package knowledge

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Backend finds items in a namespace. Implementations must return at most
// limit items; a ranked backend replaces StaticStore behind this interface.
type Backend interface {
	Search(ctx context.Context, namespace, query string, limit int) ([]Item, error)
}

// Snippet is an item tagged with the namespace it came from.
type Snippet struct {
	Namespace string `json:"namespace"`
	Item
}

// Retriever queries a Backend and absorbs its failures.
type Retriever struct {
	backend Backend
}

func NewRetriever(backend Backend) *Retriever {
	return &Retriever{backend: backend}
}

// Search returns up to limit items. A backend error yields an empty list.
func (r *Retriever) Search(ctx context.Context, namespace, query string, limit int) []Item {
	if r == nil || r.backend == nil {
		return nil
	}
	items, err := r.backend.Search(ctx, namespace, query, limit)
	if err != nil {
		logrus.WithError(err).WithField("namespace", namespace).Warn("knowledge search failed; continuing without it")
		return nil
	}
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// RetrieveMultiNamespace searches every namespace concurrently and
// concatenates the results in the order the namespaces were given.
func (r *Retriever) RetrieveMultiNamespace(ctx context.Context, query string, namespaces []string, limitPerNamespace int) []Snippet {
	results := make([][]Item, len(namespaces))
	g, gCtx := errgroup.WithContext(ctx)
	for i, ns := range namespaces {
		i, ns := i, ns
		g.Go(func() error {
			results[i] = r.Search(gCtx, ns, query, limitPerNamespace)
			return nil
		})
	}
	_ = g.Wait()

	var out []Snippet
	for i, ns := range namespaces {
		for _, item := range results[i] {
			out = append(out, Snippet{Namespace: ns, Item: item})
		}
	}
	logrus.WithField("namespaces", len(namespaces)).Debugf("retrieved %d knowledge items", len(out))
	return out
}
