/*
	the serialize package writes a cDBG out to standard exchange formats.
	gfa.go is grounded on SaveGraphAsGFA/LoadGFA in the teacher's
	src/graph/graphio.go: unitig nodes become GFA1 segments (tagged with
	their k-mer count), and decision-node adjacency becomes GFA1 links
	between the unitigs it borders.
*/
package serialize

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/will-rowe/cdbgstream/src/cdbg"
	"github.com/will-rowe/cdbgstream/src/version"
	"github.com/will-rowe/gfa"
)

// WriteGFA writes every unitig in store as a GFA1 segment, with links
// induced by the decision nodes that border them.
func WriteGFA(fileName string, store *cdbg.Store) error {
	newGFA := gfa.NewGFA()
	if err := newGFA.AddVersion(1); err != nil {
		return err
	}
	stamp := fmt.Sprintf("cDBG exported by cdbgstream v%v on %v", version.GetVersion(), time.Now().Format("Mon Jan _2 15:04:05 2006"))
	newGFA.AddComment([]byte(stamp))

	segIDs := map[cdbg.NodeID]string{}
	for _, u := range store.Unodes() {
		segID := strconv.FormatUint(uint64(u.ID), 10)
		segIDs[u.ID] = segID
		seg, err := gfa.NewSegment([]byte(segID), u.Sequence)
		if err != nil {
			return err
		}
		kc := fmt.Sprintf("KC:i:%d", u.Length(store.K()))
		ofs, err := gfa.NewOptionalFields([]byte(kc))
		if err != nil {
			return err
		}
		seg.AddOptionalFields(ofs)
		if err := seg.Add(newGFA); err != nil {
			return err
		}
	}

	seenLink := map[[2]string]struct{}{}
	for _, d := range store.Dnodes() {
		neighbors, err := store.FindDnodeNeighbors(d.ID)
		if err != nil {
			return err
		}
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				a, b := segIDs[neighbors[i].ID], segIDs[neighbors[j].ID]
				if a > b {
					a, b = b, a
				}
				key := [2]string{a, b}
				if _, dup := seenLink[key]; dup {
					continue
				}
				seenLink[key] = struct{}{}
				link, err := gfa.NewLink([]byte(a), []byte("+"), []byte(b), []byte("+"), []byte("0M"))
				if err != nil {
					return err
				}
				if err := link.Add(newGFA); err != nil {
					return err
				}
			}
		}
	}

	fh, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer fh.Close()
	writer, err := gfa.NewWriter(fh, newGFA)
	if err != nil {
		return err
	}
	return newGFA.WriteGFAContent(writer)
}
