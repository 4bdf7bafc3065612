package resolve

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
)

// MatchGroup lists the indices of records believed to be one company, in
// ascending order.
type MatchGroup struct {
	Key     string
	Members []int
}

// Rule names the condition that produced a fuzzy edge.
type Rule string

const (
	RuleName         Rule = "name"
	RuleCorroborated Rule = "corroborated"
)

// Edge links two records whose keys differ but which the fuzzy rules
// consider the same company. A and B are record indices with A < B.
type Edge struct {
	A, B       int
	Similarity float64
	Rule       Rule
}

type Resolver struct {
	cfg     config.Resolver
	keys    KeyNormalizer
	log     *zap.Logger
	journal *events.Journal
}

func New(cfg config.Resolver, log *zap.Logger, j *events.Journal) *Resolver {
	if log == nil {
		log = zap.L()
	}
	return &Resolver{
		cfg:     cfg,
		keys:    NewKeyNormalizer(cfg.LegalSuffixes),
		log:     log.With(zap.String("component", "resolve")),
		journal: j,
	}
}

// NormalizeKey uses the default legal suffix list.
func NormalizeKey(name string) string {
	return NewKeyNormalizer(config.Default().Resolver.LegalSuffixes).Key(name)
}

func (r *Resolver) Key(name string) string { return r.keys.Key(name) }

// cluster is one distinct non-empty key and the records that share it.
type cluster struct {
	key        string
	runes      []rune
	members    []int
	industries []string
	abouts     [][]rune
}

type pairHit struct {
	i, j int // cluster indices, i < j
	sim  float64
	rule Rule
}

// Resolve partitions companies into match groups. Records with the same key
// always share a group; distinct keys are joined by every fuzzy edge that
// clears a rule, and groups are the transitive closure of those joins.
// Records with an empty key stay alone.
func (r *Resolver) Resolve(ctx context.Context, companies []domain.Company) ([]MatchGroup, error) {
	clusters, singles := r.clusters(companies)

	hits, near, err := r.compare(ctx, clusters)
	if err != nil {
		return nil, err
	}

	uf := newUnionFind(len(clusters))
	joins := 0
	for _, h := range hits {
		if uf.union(h.i, h.j) {
			joins++
		}
	}

	byRoot := map[int]*MatchGroup{}
	var groups []MatchGroup
	var order []int
	for k, c := range clusters {
		root := uf.find(k)
		g, ok := byRoot[root]
		if !ok {
			g = &MatchGroup{Key: clusters[root].key}
			byRoot[root] = g
			order = append(order, root)
		}
		g.Members = append(g.Members, c.members...)
	}
	for _, root := range order {
		g := byRoot[root]
		sort.Ints(g.Members)
		groups = append(groups, *g)
	}
	for _, i := range singles {
		groups = append(groups, MatchGroup{Members: []int{i}})
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Members[0] < groups[b].Members[0] })

	r.reportNear(clusters, companies, near)
	r.log.Info("resolved",
		zap.Int("records", len(companies)),
		zap.Int("keys", len(clusters)),
		zap.Int("fuzzy_joins", joins),
		zap.Int("groups", len(groups)),
	)
	return groups, nil
}

// Edges returns every fuzzy edge between records with distinct keys,
// without tie-breaking. On a fully resolved batch it is empty.
func (r *Resolver) Edges(ctx context.Context, companies []domain.Company) ([]Edge, error) {
	clusters, _ := r.clusters(companies)
	hits, _, err := r.compare(ctx, clusters)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(hits))
	for _, h := range hits {
		a, b := clusters[h.i].members[0], clusters[h.j].members[0]
		if a > b {
			a, b = b, a
		}
		edges = append(edges, Edge{A: a, B: b, Similarity: h.sim, Rule: h.rule})
	}
	sort.Slice(edges, func(x, y int) bool {
		if edges[x].A != edges[y].A {
			return edges[x].A < edges[y].A
		}
		return edges[x].B < edges[y].B
	})
	return edges, nil
}

func (r *Resolver) clusters(companies []domain.Company) ([]cluster, []int) {
	var (
		clusters []cluster
		singles  []int
		index    = map[string]int{}
	)
	for i, c := range companies {
		key := r.keys.Key(c.Name)
		if key == "" {
			singles = append(singles, i)
			continue
		}
		k, ok := index[key]
		if !ok {
			k = len(clusters)
			index[key] = k
			clusters = append(clusters, cluster{key: key, runes: []rune(key)})
		}
		cl := &clusters[k]
		cl.members = append(cl.members, i)
		cl.industries = append(cl.industries, strings.ToLower(strings.TrimSpace(c.Industry)))
		var about []rune
		if !domain.IsBlank(c.About) {
			about = truncRunes(strings.ToLower(strings.TrimSpace(c.About)), r.cfg.DescriptionMaxRunes)
		}
		cl.abouts = append(cl.abouts, about)
	}
	return clusters, singles
}

// compare evaluates all cluster pairs. Above ParallelMinKeys the rows are
// sharded across workers; each worker writes only its own slots, and the
// results are concatenated in row order so output does not depend on
// scheduling.
func (r *Resolver) compare(ctx context.Context, clusters []cluster) ([]pairHit, []pairHit, error) {
	n := len(clusters)
	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n <= r.cfg.ParallelMinKeys || workers == 1 {
		workers = 1
	}

	hits := make([][]pairHit, workers)
	near := make([][]pairHit, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			// strided rows balance the triangular workload
			for i := w; i < n; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				for j := i + 1; j < n; j++ {
					h, isNear := r.pair(&clusters[i], &clusters[j])
					h.i, h.j = i, j
					switch {
					case h.rule != "":
						hits[w] = append(hits[w], h)
					case isNear:
						near[w] = append(near[w], h)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("resolve: compare keys: %w", err)
	}
	if workers > 1 {
		r.log.Debug("parallel compare", zap.Int("keys", n), zap.Int("workers", workers))
	}
	return flatten(hits), flatten(near), nil
}

func flatten(parts [][]pairHit) []pairHit {
	var out []pairHit
	for _, p := range parts {
		out = append(out, p...)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].i != out[b].i {
			return out[a].i < out[b].i
		}
		return out[a].j < out[b].j
	})
	return out
}

// pair applies the edge rules to two clusters. The second result reports a
// miss that fell within AmbiguityMargin of a threshold.
func (r *Resolver) pair(a, b *cluster) (pairHit, bool) {
	sim := ratioRunes(a.runes, b.runes)
	h := pairHit{sim: sim}
	if sim >= r.cfg.NameThreshold {
		h.rule = RuleName
		return h, false
	}
	if sim >= r.cfg.CorroboratedThreshold && r.corroborated(a, b) {
		h.rule = RuleCorroborated
		return h, false
	}
	m := r.cfg.AmbiguityMargin
	near := sim >= r.cfg.NameThreshold-m ||
		(sim < r.cfg.CorroboratedThreshold && sim >= r.cfg.CorroboratedThreshold-m)
	return h, near
}

// corroborated reports whether some member of a and some member of b share a
// non-empty industry and have similar descriptions.
func (r *Resolver) corroborated(a, b *cluster) bool {
	for x := range a.members {
		for y := range b.members {
			ia, ib := a.industries[x], b.industries[y]
			if ia == "" || ia == "unknown" || ia != ib {
				continue
			}
			if len(a.abouts[x]) == 0 || len(b.abouts[y]) == 0 {
				continue
			}
			if ratioRunes(a.abouts[x], b.abouts[y]) >= r.cfg.DescriptionThreshold {
				return true
			}
		}
	}
	return false
}

func (r *Resolver) reportNear(clusters []cluster, companies []domain.Company, near []pairHit) {
	for _, h := range near {
		a := companies[clusters[h.i].members[0]].Name
		b := companies[clusters[h.j].members[0]].Name
		msg := fmt.Sprintf("kept %q and %q apart: name similarity %.2f is near the merge threshold", a, b, h.sim)
		r.journal.Record(events.MakeEvent(events.TypeResolveAmbiguous, a, msg, map[string]any{
			"other":      b,
			"similarity": h.sim,
		}).AsIssue(domain.CategorySimilarity))
	}
	if len(near) > 0 {
		r.log.Debug("near-threshold pairs kept apart", zap.Int("pairs", len(near)))
	}
}
