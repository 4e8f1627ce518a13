package cdbg

import "github.com/will-rowe/cdbgstream/src/hashing"

// EventKind names the kind of mutation a HistoryEvent records. Grounded on
// original_source's notify_history_* family of calls in cdbg.hh, which
// report every structural change for downstream consumers (the reporting
// package) to consume without re-deriving it.
type EventKind uint8

const (
	EventBuildDnode EventKind = iota
	EventBuildUnode
	EventExtendUnode
	EventClipUnode
	EventSplitUnode
	EventMergeUnodes
	EventDeleteUnode
	EventDeleteDnode
)

func (k EventKind) String() string {
	switch k {
	case EventBuildDnode:
		return "BuildDnode"
	case EventBuildUnode:
		return "BuildUnode"
	case EventExtendUnode:
		return "ExtendUnode"
	case EventClipUnode:
		return "ClipUnode"
	case EventSplitUnode:
		return "SplitUnode"
	case EventMergeUnodes:
		return "MergeUnodes"
	case EventDeleteUnode:
		return "DeleteUnode"
	case EventDeleteDnode:
		return "DeleteDnode"
	default:
		return "Unknown"
	}
}

// HistoryEvent is emitted once per mutation primitive application. Fields
// not relevant to a given Kind are left zero. Per spec.md §4.7's
// new/extend/clip/split/split_circular/merge/delete signatures, an event
// carries the node content it produced - not just an id - so a consumer
// (src/reporting) can replay the DAG of edits without
// reading the live Store back.
type HistoryEvent struct {
	Kind EventKind

	DnodeID hashing.Hash

	UnodeID    NodeID
	OtherUnode NodeID // second operand for MergeUnodes; rchild for SplitUnode

	Meta NodeMeta

	// Seq is the resulting unitig's sequence for BuildUnode, ExtendUnode,
	// ClipUnode, MergeUnodes, and the splitCircular case of SplitUnode. For
	// a two-child SplitUnode it holds the left child's sequence (same
	// slot LSeq would otherwise duplicate).
	Seq []byte

	// LSeq, RSeq, and RMeta are populated only for a two-child SplitUnode:
	// the left child's sequence/meta live in Seq/Meta, the right child's in
	// RSeq/RMeta. LSeq mirrors Seq for split events so a consumer does not
	// need to special-case which field holds the left child.
	LSeq  []byte
	RSeq  []byte
	RMeta NodeMeta
}

// HistorySink receives a HistoryEvent for every mutation the Store applies.
// Implementations must not call back into the Store - Notify runs while
// the Store's write lock is held.
type HistorySink interface {
	Notify(HistoryEvent)
}

type nopSink struct{}

func (nopSink) Notify(HistoryEvent) {}

// HistorySinkFunc adapts a plain function to a HistorySink.
type HistorySinkFunc func(HistoryEvent)

func (f HistorySinkFunc) Notify(e HistoryEvent) { f(e) }
