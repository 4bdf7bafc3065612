package repair

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
)

// Correction kinds, in the order they are applied to a salary range.
const (
	KindDefault = "default"
	KindAbs     = "abs"
	KindWiden   = "widen"
	KindCap     = "cap"

	KindExperience = "experience_abs"
)

// Correction is one change made to a numeric field.
type Correction struct {
	Kind string `json:"kind"`
	From string `json:"from"`
	To   string `json:"to"`
}

type Repairer struct {
	cfg     config.Repair
	log     *zap.Logger
	journal *events.Journal
}

func New(cfg config.Repair, log *zap.Logger, j *events.Journal) *Repairer {
	if log == nil {
		log = zap.L()
	}
	return &Repairer{cfg: cfg, log: log.With(zap.String("component", "repair")), journal: j}
}

// Salary returns a range satisfying 0 <= min < max <= ceiling. It never
// fails; each step that changed the value is reported.
func (r *Repairer) Salary(sr *domain.SalaryRange) (domain.SalaryRange, []Correction) {
	var fixes []Correction
	step := func(kind string, from, to domain.SalaryRange) {
		if from != to {
			fixes = append(fixes, Correction{Kind: kind, From: from.String(), To: to.String()})
		}
	}

	var cur domain.SalaryRange
	if sr == nil {
		cur = domain.SalaryRange{Min: r.cfg.DefaultMin, Max: r.cfg.DefaultMax}
		fixes = append(fixes, Correction{Kind: KindDefault, From: "absent", To: cur.String()})
	} else {
		cur = *sr
	}

	next := domain.SalaryRange{Min: abs(cur.Min), Max: abs(cur.Max)}
	step(KindAbs, cur, next)
	cur = next

	if cur.Min >= cur.Max {
		next = domain.SalaryRange{Min: cur.Min, Max: addSat(cur.Min, r.cfg.Widen)}
		step(KindWiden, cur, next)
		cur = next
	}

	if cur.Max > r.cfg.Ceiling {
		next = domain.SalaryRange{Min: min(cur.Min, r.cfg.CeilingMin), Max: r.cfg.Ceiling}
		step(KindCap, cur, next)
		cur = next
	}
	return cur, fixes
}

// Experience makes a negative year count positive.
func (r *Repairer) Experience(years int) (int, []Correction) {
	if years >= 0 {
		return years, nil
	}
	return abs(years), []Correction{{Kind: KindExperience, From: fmt.Sprint(years), To: fmt.Sprint(abs(years))}}
}

// Repair fixes every role of c in place and journals each correction.
// It returns the number of corrections made.
func (r *Repairer) Repair(c *domain.Company) int {
	n := 0
	for i := range c.Roles {
		role := &c.Roles[i]

		sr, fixes := r.Salary(role.SalaryRange)
		role.SalaryRange = &sr
		years, more := r.Experience(role.MinExperienceYears)
		role.MinExperienceYears = years

		for _, f := range append(fixes, more...) {
			r.journal.Record(events.MakeEvent(
				events.RepairPrefix+f.Kind, c.Name,
				fmt.Sprintf("%s: %s -> %s", f.Kind, f.From, f.To), f,
			).ForRole(i))
			n++
		}
	}
	if n > 0 {
		r.log.Debug("repaired", zap.String("company", c.Name), zap.Int("corrections", n))
	}
	return n
}

// abs saturates at MaxInt, which the cap step then brings back in range.
func abs(n int) int {
	switch {
	case n == math.MinInt:
		return math.MaxInt
	case n < 0:
		return -n
	}
	return n
}

// addSat adds two non-negative ints without wrapping.
func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
