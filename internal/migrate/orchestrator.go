package migrate

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roach88/memberbridge/internal/identity"
	"github.com/roach88/memberbridge/internal/member"
	"github.com/roach88/memberbridge/internal/metrics"
)

// Orchestrator routes member operations to one or both store adapters
// according to its strategy. It holds no per-record state; every call
// is handled against the strategy snapshot taken at construction.
type Orchestrator struct {
	relational member.Store
	document   member.Store
	strategy   Strategy
	log        zerolog.Logger
	metrics    *metrics.Metrics

	// comparisons tracks in-flight comparison goroutines so shutdown
	// (and tests) can drain them with Flush.
	comparisons sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for comparison findings and
// suppressed secondary-store failures.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithMetrics sets the metrics sink. Nil is valid and drops everything.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an orchestrator over the two adapters. The strategy is
// fixed for the orchestrator's lifetime; switching strategies means
// building a new orchestrator so no cached state leaks across the
// switch.
func New(relational, document member.Store, strategy Strategy, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		relational: relational,
		document:   document,
		strategy:   strategy,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Strategy returns the strategy snapshot this orchestrator routes by.
func (o *Orchestrator) Strategy() Strategy {
	return o.strategy
}

// PrimaryIsRelational reports whether callers should pre-validate ids
// as numeric before calling: true when reads are served from the
// relational store.
func (o *Orchestrator) PrimaryIsRelational() bool {
	return o.strategy.readFrom() == member.StoreRelational
}

// Flush blocks until all dispatched comparisons have finished.
// Call during shutdown and in tests that assert on comparison output.
func (o *Orchestrator) Flush() {
	o.comparisons.Wait()
}

// store returns the adapter for a kind.
func (o *Orchestrator) store(kind member.StoreKind) member.Store {
	if kind == member.StoreDocument {
		return o.document
	}
	return o.relational
}

// Create persists a new member.
//
// Under dual-write the relational store runs first and is
// authoritative for the new identifier; the document store is then
// forced to adopt that key. If the document create fails for any
// reason the relational record is deleted again and the original
// document-store error is re-raised: a failed create never leaves a
// record in only one store.
func (o *Orchestrator) Create(ctx context.Context, m member.Member) (out member.Member, err error) {
	st := o.strategy
	defer func() { o.metrics.Operation("create", err) }()

	if !st.DualWrite {
		return o.store(st.Primary).Create(ctx, m)
	}

	rel, err := o.relational.Create(ctx, m)
	if err != nil {
		return member.Member{}, err
	}

	docShape, err := identity.ForDocument(rel)
	if err != nil {
		// Identity invariant broken: fatal, but the relational row
		// must still be compensated before surfacing it.
		o.compensateCreate(ctx, rel)
		return member.Member{}, err
	}

	doc, err := o.document.Create(ctx, docShape)
	if err != nil {
		o.compensateCreate(ctx, rel)
		return member.Member{}, err
	}

	if st.ReadSource == member.StoreDocument {
		return doc, nil
	}
	return rel, nil
}

// compensateCreate rolls back the relational half of a failed
// dual-write create. A failing rollback leaves an orphan and is the
// one situation that demands operator attention, so it logs at error.
func (o *Orchestrator) compensateCreate(ctx context.Context, rel member.Member) {
	o.metrics.Rollback()
	if _, delErr := o.relational.Delete(ctx, rel.ID.String()); delErr != nil {
		o.log.Error().
			Err(delErr).
			Str("id", rel.ID.String()).
			Msg("compensating delete failed; relational record is orphaned")
		return
	}
	o.log.Warn().
		Str("id", rel.ID.String()).
		Msg("document create failed; relational create rolled back")
}

// Get returns the member with the given id from the read source.
// The non-authoritative store is never consulted synchronously.
func (o *Orchestrator) Get(ctx context.Context, id string) (out member.Member, err error) {
	st := o.strategy
	defer func() { o.metrics.Operation("get", err) }()

	m, err := o.store(st.readFrom()).Get(ctx, id)
	if err != nil {
		return member.Member{}, err
	}

	if st.compareEnabled() {
		got := m
		o.dispatchComparison(func() Report {
			return o.compareOne(id, &got)
		})
	}
	return m, nil
}

// List returns all members from the read source.
func (o *Orchestrator) List(ctx context.Context) (out []member.Member, err error) {
	st := o.strategy
	defer func() { o.metrics.Operation("list", err) }()

	members, err := o.store(st.readFrom()).List(ctx)
	if err != nil {
		return nil, err
	}

	if st.compareEnabled() {
		ref := members
		o.dispatchComparison(func() Report {
			return o.compareMany("list", ref, func(ctx context.Context) ([]member.Member, error) {
				return o.document.List(ctx)
			})
		})
	}
	return members, nil
}

// Search returns members whose name contains the given text,
// case-insensitively, from the read source.
func (o *Orchestrator) Search(ctx context.Context, name string) (out []member.Member, err error) {
	st := o.strategy
	defer func() { o.metrics.Operation("search", err) }()

	members, err := o.store(st.readFrom()).SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if st.compareEnabled() {
		ref := members
		o.dispatchComparison(func() Report {
			return o.compareMany("search", ref, func(ctx context.Context) ([]member.Member, error) {
				return o.document.SearchByName(ctx, name)
			})
		})
	}
	return members, nil
}

// Update replaces name/email/phone of an existing member.
//
// Under dual-write the relational store is updated first; the document
// store is then updated with the same identifier. Unlike create there
// is no compensation: a document-store failure is logged and
// suppressed, and the call still succeeds. This asymmetry is
// deliberate policy carried over from the migration runbook.
func (o *Orchestrator) Update(ctx context.Context, id string, m member.Member) (out member.Member, err error) {
	st := o.strategy
	defer func() { o.metrics.Operation("update", err) }()

	if !st.DualWrite {
		return o.store(st.Primary).Update(ctx, id, m)
	}

	rel, err := o.relational.Update(ctx, id, m)
	if err != nil {
		return member.Member{}, err
	}

	docShape, err := identity.ForDocument(rel)
	if err != nil {
		return member.Member{}, err
	}

	doc, docErr := o.document.Update(ctx, docShape.ID.String(), docShape)
	if docErr != nil {
		o.log.Warn().
			Err(docErr).
			Str("id", id).
			Msg("document update failed; stores may have diverged")
	}

	if st.ReadSource == member.StoreDocument && docErr == nil {
		return doc, nil
	}
	return rel, nil
}

// Delete removes a member.
//
// Under dual-write the relational delete gates the document delete:
// only a relational "existed and removed" proceeds to the document
// store. A document-store failure after that point is swallowed and
// false is returned, so a delete can succeed in one store and silently
// fail in the other. Known weak guarantee; comparison-on-read is the
// safety net that eventually surfaces the divergence.
func (o *Orchestrator) Delete(ctx context.Context, id string) (ok bool, err error) {
	st := o.strategy
	defer func() { o.metrics.Operation("delete", err) }()

	if !st.DualWrite {
		return o.store(st.Primary).Delete(ctx, id)
	}

	relOK, err := o.relational.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !relOK {
		return false, nil
	}

	docOK, docErr := o.document.Delete(ctx, id)
	if docErr != nil {
		o.log.Warn().
			Err(docErr).
			Str("id", id).
			Msg("document delete failed after relational delete succeeded")
		return false, nil
	}
	return docOK, nil
}

// dispatchComparison runs a comparison in the background, logs its
// report, and never lets a comparison failure reach the caller.
func (o *Orchestrator) dispatchComparison(run func() Report) {
	o.comparisons.Add(1)
	go func() {
		defer o.comparisons.Done()
		defer func() {
			if r := recover(); r != nil {
				o.log.Error().Interface("panic", r).Msg("comparison panicked")
			}
		}()
		o.logReport(run())
	}()
}

// compareOne diffs a single read result against the document store.
func (o *Orchestrator) compareOne(id string, ref *member.Member) Report {
	report := Report{Op: "get"}

	doc, err := o.document.Get(context.Background(), id)
	switch {
	case member.IsNotFound(err):
		report.Findings = CompareMembers(id, ref, nil)
	case err != nil:
		report.Err = fmt.Errorf("compare get %s: %w", id, err)
	default:
		report.Findings = CompareMembers(id, ref, &doc)
	}
	return report
}

// compareMany diffs a read result set against the document store.
func (o *Orchestrator) compareMany(op string, ref []member.Member, fetch func(context.Context) ([]member.Member, error)) Report {
	report := Report{Op: op}

	docs, err := fetch(context.Background())
	if err != nil {
		report.Err = fmt.Errorf("compare %s: %w", op, err)
		return report
	}
	report.Findings = CompareSets(ref, docs)
	return report
}

// logReport emits a comparison report as structured log events and
// counts its findings. Comparison output never affects control flow.
func (o *Orchestrator) logReport(report Report) {
	if report.Err != nil {
		o.log.Error().Err(report.Err).Str("op", report.Op).Msg("comparison failed")
		return
	}
	for _, f := range report.Findings {
		o.metrics.Finding(string(f.Kind))
		o.log.Warn().
			Str("op", report.Op).
			Str("kind", string(f.Kind)).
			Str("id", f.ID).
			Str("field", f.Field).
			Str("left", f.Left).
			Str("right", f.Right).
			Msg("store divergence detected")
	}
}
