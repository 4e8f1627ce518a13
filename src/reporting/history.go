/*
	the reporting package turns the Mutator's HistoryEvent stream into
	on-disk records and summary statistics. history.go is grounded on
	LSHforest.Dump/Load in the teacher's src/lshForest/lshForest.go: a
	slice of records is marshalled with msgpack and written whole, rather
	than appended event-by-event, so a run's history log is a single
	self-contained artifact.
*/
package reporting

import (
	"io/ioutil"

	"github.com/will-rowe/cdbgstream/src/cdbg"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// HistoryLog accumulates HistoryEvents in order and can be marshalled to
// disk as a single msgpack document.
type HistoryLog struct {
	Events []cdbg.HistoryEvent
}

// NewHistoryLog is the constructor.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{}
}

// Notify implements cdbg.HistorySink, appending each event as it arrives.
func (h *HistoryLog) Notify(event cdbg.HistoryEvent) {
	h.Events = append(h.Events, event)
}

// Dump writes the accumulated history log to path as msgpack.
func (h *HistoryLog) Dump(path string) error {
	b, err := msgpack.Marshal(h)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0644)
}

// Load reads a history log previously written by Dump.
func (h *HistoryLog) Load(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(b, h)
}
