package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/will-rowe/cdbgstream/src/cdbg"
	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
	"github.com/will-rowe/cdbgstream/src/misc"
	"github.com/will-rowe/cdbgstream/src/pipeline"
	"github.com/will-rowe/cdbgstream/src/reporting"
)

// the command line arguments
var (
	graphFile *string // the index.cdbg snapshot file to load
	infoFile  *string // the index.info runtime file to load
	querySeq  *string // a k-mer length sequence to look up
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Inspect a built compacted de Bruijn graph",
	Long:  `Inspect a built compacted de Bruijn graph`,
	Run: func(cmd *cobra.Command, args []string) {
		runQuery()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

func init() {
	graphFile = queryCmd.Flags().StringP("graph", "g", "", "path to a built index's index.cdbg file - required")
	infoFile = queryCmd.Flags().StringP("info", "i", "", "path to the matching index.info file - required")
	querySeq = queryCmd.Flags().String("kmer", "", "a k-mer length sequence to look up the decision/unitig status of")
	queryCmd.MarkFlagRequired("graph")
	queryCmd.MarkFlagRequired("info")
	RootCmd.AddCommand(queryCmd)
}

func queryParamCheck() error {
	if err := misc.CheckFile(*graphFile); err != nil {
		return err
	}
	if err := misc.CheckFile(*infoFile); err != nil {
		return err
	}
	return nil
}

func runQuery() {
	logFH := misc.StartLogging(*logFile)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("starting the query subcommand")
	misc.ErrorCheck(queryParamCheck())

	info := &pipeline.Info{}
	misc.ErrorCheck(info.Load(*infoFile))
	log.Printf("\tk-mer size: %d", info.KmerSize)
	log.Printf("\thash algorithm: nthash (canonical=%v)", info.Canonical)

	newHasher := func() hashing.Hasher { return hashing.NewNtHasher(info.KmerSize, info.Canonical) }
	var dbg dbgstore.Store
	if info.Backend == "bloom" {
		dbg = dbgstore.NewBloomStore(info.BloomBits)
	} else {
		dbg = dbgstore.NewExactSet()
	}
	store := cdbg.NewStore(info.KmerSize, info.TagDensity, newHasher, dbg)
	misc.ErrorCheck(store.Load(*graphFile))

	summary := reporting.Summarize(store)
	misc.ErrorCheck(summary.WriteSummary(os.Stdout))

	if *querySeq != "" {
		if len(*querySeq) != info.KmerSize {
			misc.ErrorCheck(fmt.Errorf("query k-mer must be exactly %d bases long", info.KmerSize))
		}
		h := newHasher()
		hash, err := h.Seed([]byte(*querySeq))
		misc.ErrorCheck(err)
		if d, ok := store.QueryDnode(hash); ok {
			fmt.Printf("%v is a decision k-mer (left=%d, right=%d, count=%d)\n", *querySeq, d.LeftDegree, d.RightDegree, d.Count)
			return
		}
		if u, ok := store.QueryUnodeEnd(hash); ok {
			fmt.Printf("%v borders unitig %d (%s, length=%d)\n", *querySeq, u.ID, u.Meta, u.Length(info.KmerSize))
			return
		}
		if u, ok := store.QueryUnodeTag(hash); ok {
			fmt.Printf("%v is tagged to unitig %d (%s, length=%d)\n", *querySeq, u.ID, u.Meta, u.Length(info.KmerSize))
			return
		}
		fmt.Printf("%v was not found as a decision k-mer, unitig end, or unitig tag\n", *querySeq)
	}
}
