// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package track

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/pageforge/pkg/types"
)

// EventSink receives validated, ordered events of one type. The session
// resolver is the primary sink; tests use fakes.
type EventSink interface {
	// Consume processes one event. A returned error fails only the
	// event's type group, not the batch.
	Consume(ev types.InteractionEvent) error
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev types.InteractionEvent) error

// Consume implements EventSink.
func (f SinkFunc) Consume(ev types.InteractionEvent) error { return f(ev) }

// TypeSummary reports the outcome of one event type within a batch.
type TypeSummary struct {
	// Type is the event type.
	Type types.InteractionType `json:"type"`

	// Processed counts events successfully consumed.
	Processed int `json:"processed"`

	// Failed counts events the sink rejected.
	Failed int `json:"failed"`

	// Err is the first sink error for this type, nil when all consumed.
	Err error `json:"-"`
}

// BatchResult summarizes one ingested batch.
type BatchResult struct {
	// Summaries holds one entry per event type seen, ordered by type.
	Summaries []TypeSummary `json:"summaries"`

	// Malformed counts events skipped before grouping (unknown type or
	// missing timestamp).
	Malformed int `json:"malformed"`
}

// Processed returns the total events consumed across all types.
func (r *BatchResult) Processed() int {
	total := 0
	for _, s := range r.Summaries {
		total += s.Processed
	}
	return total
}

// Ingestor processes batches of client-side interaction events. Clients
// buffer events and flush periodically, so batches arrive with mixed
// types, duplicates, and out-of-order timestamps.
type Ingestor struct {
	sink EventSink
	warn io.Writer
}

// NewIngestor returns an ingestor delivering to sink. Warnings about
// skipped events go to warn when non-nil.
func NewIngestor(sink EventSink, warn io.Writer) *Ingestor {
	return &Ingestor{sink: sink, warn: warn}
}

// Ingest validates, orders, and delivers a batch. Events are sorted by
// client timestamp, grouped by type, and delivered group by group; a
// sink failure poisons only the remaining events of that type.
// Malformed events are counted and skipped, never aborting the batch.
func (in *Ingestor) Ingest(events []types.InteractionEvent) BatchResult {
	var result BatchResult

	valid := make([]types.InteractionEvent, 0, len(events))
	for _, ev := range events {
		if !types.ValidInteractionTypes[ev.Type] || ev.Timestamp.IsZero() {
			result.Malformed++
			if in.warn != nil {
				fmt.Fprintf(in.warn, "warning: skipping malformed event type=%q target=%q\n", ev.Type, ev.Target)
			}
			continue
		}
		valid = append(valid, ev)
	}

	// Client timestamps restore the visitor's actual interaction order.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	groups := make(map[types.InteractionType][]types.InteractionEvent)
	for _, ev := range valid {
		groups[ev.Type] = append(groups[ev.Type], ev)
	}

	order := make([]types.InteractionType, 0, len(groups))
	for t := range groups {
		order = append(order, t)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	for _, t := range order {
		summary := TypeSummary{Type: t}
		for _, ev := range groups[t] {
			if summary.Err != nil {
				summary.Failed++
				continue
			}
			if err := in.sink.Consume(ev); err != nil {
				summary.Err = err
				summary.Failed++
				if in.warn != nil {
					fmt.Fprintf(in.warn, "warning: %s events failed: %v\n", t, err)
				}
				continue
			}
			summary.Processed++
		}
		result.Summaries = append(result.Summaries, summary)
	}
	return result
}
