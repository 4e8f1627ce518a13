package cdbg

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/will-rowe/cdbgstream/src/hashing"
)

// snapshot is the gob-serializable projection of a Store: everything except
// the function-valued newHasher/dbg collaborators and the HistorySink,
// which a Load caller must supply fresh. Grounded directly on
// src/graph/index.go's ContainmentIndex.Dump/Load.
type snapshot struct {
	K          int
	TagDensity int
	NextNodeID NodeID
	Dnodes     map[hashing.Hash]*DecisionNode
	Unodes     map[NodeID]*UnitigNode
	UnitigEnds map[hashing.Hash]NodeID
	UnitigTags map[hashing.Hash]NodeID
}

func (s *Store) toSnapshot() *snapshot {
	return &snapshot{
		K:          s.k,
		TagDensity: s.tagDensity,
		NextNodeID: s.nextNodeID,
		Dnodes:     s.dnodes,
		Unodes:     s.unodes,
		UnitigEnds: s.unitigEnds,
		UnitigTags: s.unitigTags,
	}
}

// Dump writes the cDBG index to filePath as a gob stream.
func (s *Store) Dump(filePath string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fh, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer fh.Close()
	return gob.NewEncoder(fh).Encode(s.toSnapshot())
}

// Load populates an existing Store (constructed via NewStore with the
// correct k, newHasher, and dbg) from a gob snapshot written by Dump. The
// Store must be empty; Load refuses to merge into a non-empty index.
func (s *Store) Load(filePath string) error {
	data, err := ioutil.ReadFile(filePath)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("cdbg: snapshot file is empty")
	}
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("cdbg: decoding snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dnodes) != 0 || len(s.unodes) != 0 {
		return fmt.Errorf("cdbg: %w: Load called on a non-empty Store", ErrInvariant)
	}
	if snap.K != s.k {
		return fmt.Errorf("cdbg: %w: snapshot built with K=%d, Store built with K=%d", ErrInvariant, snap.K, s.k)
	}
	s.tagDensity = snap.TagDensity
	s.nextNodeID = snap.NextNodeID
	s.dnodes = snap.Dnodes
	s.unodes = snap.Unodes
	s.unitigEnds = snap.UnitigEnds
	s.unitigTags = snap.UnitigTags
	return nil
}
