package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"companyclean-engine/internal/audit"
	"companyclean-engine/internal/config"
	"companyclean-engine/internal/domain"
	"companyclean-engine/internal/events"
	"companyclean-engine/internal/merge"
	"companyclean-engine/internal/normalize"
	"companyclean-engine/internal/recovery"
	"companyclean-engine/internal/repair"
	"companyclean-engine/internal/resolve"
)

// Pipeline runs the stages strictly in sequence, each over the whole batch.
// Every stage records into the same journal, so a Pipeline serves one run.
type Pipeline struct {
	cfg     config.Config
	log     *zap.Logger
	journal *events.Journal

	parser     *recovery.Parser
	resolver   *resolve.Resolver
	merger     *merge.Merger
	normalizer *normalize.Normalizer
	repairer   *repair.Repairer
	auditor    *audit.Auditor
}

func New(cfg config.Config, log *zap.Logger, j *events.Journal) *Pipeline {
	if log == nil {
		log = zap.L()
	}
	if j == nil {
		j = events.NewJournal()
	}
	return &Pipeline{
		cfg:        cfg,
		log:        log.With(zap.String("component", "pipeline")),
		journal:    j,
		parser:     recovery.New(cfg.Recovery, log, j),
		resolver:   resolve.New(cfg.Resolver, log, j),
		merger:     merge.New(cfg.Merge, log, j),
		normalizer: normalize.New(cfg.Normalize, log, j),
		repairer:   repair.New(cfg.Repair, log, j),
		auditor:    audit.New(cfg, log, j),
	}
}

func (p *Pipeline) Journal() *events.Journal { return p.journal }

type Result struct {
	Companies []domain.Company `json:"companies"`
	Report    audit.Report     `json:"report"`
	Stats     Stats            `json:"stats"`
}

type recordProblem struct {
	record int
	domain.FieldProblem
}

type batch struct {
	companies []domain.Company
	problems  []recordProblem
	stats     Stats
}

// load recovers and types every input. Records without a name are dropped:
// they cannot be resolved and could never satisfy name uniqueness.
func (p *Pipeline) load(inputs [][]byte) (batch, error) {
	var b batch
	b.stats.Inputs = len(inputs)
	for n, data := range inputs {
		b.stats.Bytes += len(data)
		res, err := p.parser.Parse(data)
		var empty *recovery.EmptyInputError
		switch {
		case errors.As(err, &empty):
			b.stats.Discarded += empty.Discarded
			p.log.Warn("input has no records", zap.Int("input", n), zap.Error(err))
			continue
		case err != nil:
			return b, fmt.Errorf("input %d: %w", n, err)
		}
		b.stats.Salvaged += res.Salvaged
		b.stats.Discarded += res.Discarded

		for _, raw := range res.Records {
			c, probs := domain.DecodeCompany(raw)
			if domain.IsBlank(c.Name) {
				b.stats.Nameless++
				p.journal.Record(events.MakeEvent(events.TypeDecodeProblem, "",
					fmt.Sprintf("dropped record without company_name (input %d)", n), nil,
				).AsIssue(domain.CategoryMissingField))
				continue
			}
			idx := len(b.companies)
			b.companies = append(b.companies, c)
			for _, fp := range probs {
				b.problems = append(b.problems, recordProblem{record: idx, FieldProblem: fp})
				e := events.MakeEvent(events.TypeDecodeProblem, c.Name, fp.String(), nil)
				if fp.Role >= 0 {
					e = e.ForRole(fp.Role)
				}
				p.journal.Record(e)
			}
		}
	}
	b.stats.Records = len(b.companies)
	if len(b.companies) == 0 {
		return b, &recovery.EmptyInputError{Bytes: b.stats.Bytes, Discarded: b.stats.Discarded + b.stats.Nameless}
	}
	return b, nil
}

// Run cleans one or more raw batches into a single canonical batch and its
// quality report. The only errors are *recovery.EmptyInputError and the
// context's.
func (p *Pipeline) Run(ctx context.Context, inputs ...[]byte) (Result, error) {
	b, err := p.load(inputs)
	if err != nil {
		return Result{}, err
	}
	stats := b.stats

	groups, err := p.resolver.Resolve(ctx, b.companies)
	if err != nil {
		return Result{}, err
	}
	stats.Groups = len(groups)

	reg := NewRegistry(p.merger, p.journal)
	slotOf := make([]int, len(b.companies))
	for _, g := range groups {
		members := make([]domain.Company, 0, len(g.Members))
		for _, m := range g.Members {
			members = append(members, b.companies[m])
		}
		merged := p.merger.Merge(members)
		if !reg.Add(merged) {
			stats.Collisions++
		}
		slot, _ := reg.Lookup(merged.Name)
		for _, m := range g.Members {
			slotOf[m] = slot
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	out := reg.Companies()
	for i := range out {
		p.normalizer.Normalize(&out[i])
		stats.Corrections += p.repairer.Repair(&out[i])
	}

	// shape problems are reported against the company the record ended in
	problems := make([]audit.Problem, 0, len(b.problems))
	for _, rp := range b.problems {
		problems = append(problems, audit.Problem{Subject: out[slotOf[rp.record]].Name, FieldProblem: rp.FieldProblem})
	}

	report, err := p.auditor.Audit(ctx, out, problems)
	if err != nil {
		return Result{}, err
	}
	stats.tally(out)

	p.log.Info("run complete",
		zap.Int("inputs", stats.Inputs),
		zap.Int("records", stats.Records),
		zap.Int("companies", stats.Companies),
		zap.Int("roles", stats.Roles),
		zap.Int("corrections", stats.Corrections),
		zap.Float64("score", report.Score),
	)
	return Result{Companies: out, Report: report, Stats: stats}, nil
}

// Audit scores already-cleaned batches without changing them. Shape problems
// found while decoding are reported as type mismatches.
func (p *Pipeline) Audit(ctx context.Context, inputs ...[]byte) ([]domain.Company, audit.Report, error) {
	b, err := p.load(inputs)
	if err != nil {
		return nil, audit.Report{}, err
	}
	problems := make([]audit.Problem, 0, len(b.problems))
	for _, rp := range b.problems {
		problems = append(problems, audit.Problem{Subject: b.companies[rp.record].Name, FieldProblem: rp.FieldProblem})
	}
	report, err := p.auditor.Audit(ctx, b.companies, problems)
	if err != nil {
		return nil, audit.Report{}, err
	}
	return b.companies, report, nil
}
