/*
	reporting.go tallies HistoryEvents and summarizes a finished cDBG.
	The BAM/SAM coverage reporter this file started from has no place in
	a read-streaming cDBG build (there are no alignments to pile up), so
	it is replaced with event and graph summaries; the gonum/plot usage
	the teacher uses for its coverage plot is kept and retargeted at a
	unitig length-distribution histogram in plot.go.
*/
package reporting

import (
	"fmt"
	"io"

	"github.com/will-rowe/cdbgstream/src/cdbg"
)

// EventCounter tallies HistoryEvents by kind as a build runs, giving a
// running summary of how many times each mutation primitive fired.
type EventCounter struct {
	counts map[cdbg.EventKind]int
}

// NewEventCounter is the constructor.
func NewEventCounter() *EventCounter {
	return &EventCounter{counts: make(map[cdbg.EventKind]int)}
}

// Notify implements cdbg.HistorySink.
func (c *EventCounter) Notify(event cdbg.HistoryEvent) {
	c.counts[event.Kind]++
}

// Count returns how many times a given event kind has fired so far.
func (c *EventCounter) Count(kind cdbg.EventKind) int {
	return c.counts[kind]
}

// WriteSummary writes a one-line-per-kind tally to w.
func (c *EventCounter) WriteSummary(w io.Writer) error {
	kinds := []cdbg.EventKind{
		cdbg.EventBuildDnode,
		cdbg.EventBuildUnode,
		cdbg.EventExtendUnode,
		cdbg.EventClipUnode,
		cdbg.EventSplitUnode,
		cdbg.EventMergeUnodes,
		cdbg.EventDeleteUnode,
		cdbg.EventDeleteDnode,
	}
	for _, k := range kinds {
		if _, err := fmt.Fprintf(w, "%v\t%d\n", k, c.counts[k]); err != nil {
			return err
		}
	}
	return nil
}

// GraphSummary reports headline statistics for a finished (or in-flight)
// cDBG.
type GraphSummary struct {
	NumDnodes     int
	NumUnodes     int
	NumComponents int
	TotalBases    int64
	LongestUnitig int
}

// Summarize walks store and computes a GraphSummary. It triggers a
// connected-components recompute, so call it after a batch of reads
// rather than per-read.
func Summarize(store *cdbg.Store) GraphSummary {
	s := GraphSummary{
		NumDnodes:     store.NumDnodes(),
		NumUnodes:     store.NumUnodes(),
		NumComponents: len(store.FindConnectedComponents()),
	}
	for _, u := range store.Unodes() {
		l := u.Length(store.K())
		s.TotalBases += int64(len(u.Sequence))
		if l > s.LongestUnitig {
			s.LongestUnitig = l
		}
	}
	return s
}

// WriteSummary writes a GraphSummary as plain text.
func (s GraphSummary) WriteSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "decision nodes:\t%d\nunitig nodes:\t%d\ncomponents:\t%d\ntotal bases:\t%d\nlongest unitig:\t%d\n",
		s.NumDnodes, s.NumUnodes, s.NumComponents, s.TotalBases, s.LongestUnitig)
	return err
}
