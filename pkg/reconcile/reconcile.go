// Package reconcile orchestrates one reconciliation pass: align the two
// datasets, normalize and compare every common field of every matched
// record, fold the outcomes into aggregate statistics, and build the report
// structures. The pass is a pure batch computation; comparison work is
// parallelized across record pairs and the per-worker tallies are merged.
package reconcile

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"regrecon/pkg/align"
	"regrecon/pkg/compare"
	"regrecon/pkg/dataset"
	"regrecon/pkg/errors"
	"regrecon/pkg/fieldspec"
	"regrecon/pkg/logging"
	"regrecon/pkg/normalize"
	"regrecon/pkg/report"
	"regrecon/pkg/stats"
)

// Reconciler runs one reconciliation pass over a source and destination
// dataset.
type Reconciler interface {
	// Run compares the two datasets and returns the full result: the
	// outcome list, aggregate statistics, mismatch pivot, and summary.
	Run(ctx context.Context, source, destination *dataset.Dataset) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	catalog *fieldspec.Catalog
	logger  *zerolog.Logger
	workers int
	topN    int
}

// New creates a Reconciler for the given field catalog.
func New(catalog *fieldspec.Catalog, opts ...Option) (Reconciler, error) {
	if catalog == nil {
		return nil, errors.NewConfigError("reconcile", "field catalog is required", nil)
	}

	r := &reconciler{
		catalog: catalog,
		logger:  logging.Default(),
		workers: runtime.GOMAXPROCS(0),
		topN:    catalog.TopN(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.workers < 1 {
		r.workers = 1
	}

	return r, nil
}

// partial holds one worker's share of the pass.
type partial struct {
	outcomes []compare.Outcome
	agg      *stats.Aggregator
}

// Run executes the batch pass.
func (r *reconciler) Run(ctx context.Context, source, destination *dataset.Dataset) (*Result, error) {
	start := time.Now()

	alignment, err := align.Align(source, destination, r.catalog)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("source", source.Name).
		Str("destination", destination.Name).
		Int("matched_pairs", len(alignment.Pairs)).
		Int("source_only", len(alignment.SourceOnly)).
		Int("destination_only", len(alignment.DestinationOnly)).
		Int("common_fields", len(alignment.CommonFields)).
		Msg("Datasets aligned")

	norm := normalize.New(r.catalog)
	comp := compare.New(r.catalog)

	chunks := chunkPairs(alignment.Pairs, r.workers)
	partials := make([]partial, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			p := partial{agg: stats.NewAggregator()}
			for _, pair := range chunk {
				if err := gctx.Err(); err != nil {
					return errors.Wrap(errors.ErrCanceled, "comparison interrupted")
				}
				r.comparePair(norm, comp, alignment.CommonFields, pair, &p)
			}
			partials[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := stats.NewAggregator()
	total := len(alignment.Pairs) + len(alignment.SourceOnly) + len(alignment.DestinationOnly)
	outcomes := make([]compare.Outcome, 0, total*len(alignment.CommonFields))
	for _, p := range partials {
		outcomes = append(outcomes, p.outcomes...)
		agg.Merge(p.agg)
	}

	// Side-only keys are vacuously unmatched: every common field counts as
	// missing on the absent side, without per-field comparison. Present-side
	// values are normalized so the pivot still shows them.
	outcomes = appendSideOnly(outcomes, agg, norm, alignment.CommonFields,
		alignment.SourceOnly, source, compare.KindMissingInDestination, true)
	outcomes = appendSideOnly(outcomes, agg, norm, alignment.CommonFields,
		alignment.DestinationOnly, destination, compare.KindMissingInSource, false)

	// Deterministic outcome order regardless of worker scheduling.
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].Key != outcomes[j].Key {
			return outcomes[i].Key.Less(outcomes[j].Key)
		}
		return outcomes[i].Field < outcomes[j].Field
	})

	statistics := agg.Finalize(r.catalog.Window(), r.topN)
	pivot := report.BuildPivot(outcomes)
	summary := report.BuildSummary(source.Name, destination.Name, alignment.CommonFields,
		len(alignment.Pairs), len(alignment.SourceOnly), len(alignment.DestinationOnly), statistics)

	end := time.Now()
	result := &Result{
		Outcomes: outcomes,
		Stats:    statistics,
		Pivot:    pivot,
		Summary:  summary,
		Metadata: Metadata{
			StartTime:          start,
			EndTime:            end,
			Duration:           end.Sub(start),
			SourceRecords:      source.Len(),
			DestinationRecords: destination.Len(),
			MatchedPairs:       len(alignment.Pairs),
			SourceOnly:         len(alignment.SourceOnly),
			DestinationOnly:    len(alignment.DestinationOnly),
			CommonFields:       len(alignment.CommonFields),
			Workers:            r.workers,
		},
	}

	r.logger.Info().
		Int("outcomes", len(outcomes)).
		Int("mismatches", statistics.Overall.Mismatch).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation complete")

	return result, nil
}

// comparePair normalizes and compares every common field of one matched
// record pair, tallying into the worker's partial aggregate.
func (r *reconciler) comparePair(norm *normalize.Normalizer, comp *compare.Comparator,
	fields []string, pair align.Pair, p *partial) {
	month, inWindow := r.anchorMonth(norm, pair)

	for _, field := range fields {
		srcRaw, _ := pair.Source.Value(field)
		dstRaw, _ := pair.Destination.Value(field)

		o := comp.Outcome(pair.Key, field,
			norm.Normalize(field, srcRaw),
			norm.Normalize(field, dstRaw))

		p.outcomes = append(p.outcomes, o)
		p.agg.Observe(o)
		if inWindow {
			p.agg.ObserveMonthly(month, o)
		}
	}
}

// anchorMonth resolves the record's temporal anchor to a calendar month
// inside the reporting window. The source value is preferred; the
// destination is the fallback when the source anchor is missing or
// unparseable. Records without a resolvable in-window anchor stay out of
// the monthly view but remain in the overall counts.
func (r *reconciler) anchorMonth(norm *normalize.Normalizer, pair align.Pair) (time.Month, bool) {
	anchor := r.catalog.AnchorField()
	if anchor == "" {
		return 0, false
	}

	for _, rec := range []*dataset.Record{pair.Source, pair.Destination} {
		raw, ok := rec.Value(anchor)
		if !ok {
			continue
		}
		v := norm.Normalize(anchor, raw)
		if v.Kind != normalize.KindDate {
			continue
		}
		if !r.catalog.Window().Contains(v.Time) {
			return 0, false
		}
		return v.Time.Month(), true
	}
	return 0, false
}

// appendSideOnly emits the vacuous outcomes for keys present on one side
// only and tallies them into the aggregate views.
func appendSideOnly(outcomes []compare.Outcome, agg *stats.Aggregator, norm *normalize.Normalizer,
	fields []string, keys []dataset.Key, side *dataset.Dataset, kind compare.Kind, presentIsSource bool) []compare.Outcome {
	if len(keys) == 0 {
		return outcomes
	}

	byKey := make(map[dataset.Key]*dataset.Record, side.Len())
	for i := range side.Records {
		byKey[side.Records[i].Key] = &side.Records[i]
	}

	for _, key := range keys {
		rec := byKey[key]
		for _, field := range fields {
			present := normalize.Missing("")
			if rec != nil {
				raw, _ := rec.Value(field)
				present = norm.Normalize(field, raw)
			}

			o := compare.Outcome{Key: key, Field: field, Kind: kind}
			if presentIsSource {
				o.Source = present
				o.Destination = normalize.Missing("")
			} else {
				o.Source = normalize.Missing("")
				o.Destination = present
			}

			outcomes = append(outcomes, o)
			agg.Observe(o)
		}
	}
	return outcomes
}

// chunkPairs splits the matched pairs into at most n contiguous chunks.
func chunkPairs(pairs []align.Pair, n int) [][]align.Pair {
	if len(pairs) == 0 {
		return nil
	}
	if n > len(pairs) {
		n = len(pairs)
	}

	chunks := make([][]align.Pair, 0, n)
	size := (len(pairs) + n - 1) / n
	for start := 0; start < len(pairs); start += size {
		end := start + size
		if end > len(pairs) {
			end = len(pairs)
		}
		chunks = append(chunks, pairs[start:end])
	}
	return chunks
}
