package pipeline

import (
	"fmt"
	"strings"

	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
	"companyclean-engine/internal/merge"
	"companyclean-engine/internal/normalize"
)

// Registry owns the set of company names already emitted by a run. It
// replaces ad-hoc "seen" sets: a company whose cleaned name is already
// registered is merged into the earlier one instead of being emitted twice.
type Registry struct {
	merger    *merge.Merger
	journal   *events.Journal
	index     map[string]int
	companies []domain.Company
}

func NewRegistry(m *merge.Merger, j *events.Journal) *Registry {
	return &Registry{merger: m, journal: j, index: map[string]int{}}
}

func registryKey(name string) string {
	return strings.ToLower(normalize.CleanText(name))
}

// Add registers c. It reports false when c collided with a registered name
// and was merged into it.
func (r *Registry) Add(c domain.Company) bool {
	key := registryKey(c.Name)
	i, taken := r.index[key]
	if !taken {
		r.index[key] = len(r.companies)
		r.companies = append(r.companies, c)
		return true
	}
	prev := r.companies[i]
	r.companies[i] = r.merger.Merge([]domain.Company{prev, c})
	r.journal.Record(events.MakeEvent(events.TypeRegistryCollision, prev.Name,
		fmt.Sprintf("merged %q into %q: names collide after cleaning", c.Name, prev.Name), nil,
	).AsIssue(domain.CategoryDuplicate))
	return false
}

// Lookup returns the index of the company registered under name.
func (r *Registry) Lookup(name string) (int, bool) {
	i, ok := r.index[registryKey(name)]
	return i, ok
}

func (r *Registry) Len() int { return len(r.companies) }

// Companies returns the registered companies in first-registration order.
// The slice is owned by the registry.
func (r *Registry) Companies() []domain.Company { return r.companies }
