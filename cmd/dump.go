package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/will-rowe/cdbgstream/src/cdbg"
	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
	"github.com/will-rowe/cdbgstream/src/misc"
	"github.com/will-rowe/cdbgstream/src/pipeline"
	"github.com/will-rowe/cdbgstream/src/serialize"
)

// the command line arguments
var (
	dumpGraphFile *string // the index.cdbg snapshot file to load
	dumpInfoFile  *string // the index.info runtime file to load
	dumpFormat    *string // fasta, gfa or graphml
	dumpOut       *string // output file path
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Export a built compacted de Bruijn graph to FASTA, GFA or GraphML",
	Long:  `Export a built compacted de Bruijn graph to FASTA, GFA or GraphML`,
	Run: func(cmd *cobra.Command, args []string) {
		runDump()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

func init() {
	dumpGraphFile = dumpCmd.Flags().StringP("graph", "g", "", "path to a built index's index.cdbg file - required")
	dumpInfoFile = dumpCmd.Flags().StringP("info", "i", "", "path to the matching index.info file - required")
	dumpFormat = dumpCmd.Flags().StringP("format", "t", "fasta", "export format: fasta, gfa, graphml")
	dumpOut = dumpCmd.Flags().StringP("out", "o", "./cdbgstream-export", "output file path, without extension")
	dumpCmd.MarkFlagRequired("graph")
	dumpCmd.MarkFlagRequired("info")
	RootCmd.AddCommand(dumpCmd)
}

func dumpParamCheck() error {
	if err := misc.CheckFile(*dumpGraphFile); err != nil {
		return err
	}
	if err := misc.CheckFile(*dumpInfoFile); err != nil {
		return err
	}
	switch *dumpFormat {
	case "fasta", "gfa", "graphml":
	default:
		return fmt.Errorf("unrecognised export format: %v (choose fasta, gfa or graphml)", *dumpFormat)
	}
	return nil
}

func runDump() {
	logFH := misc.StartLogging(*logFile)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("starting the dump subcommand")
	misc.ErrorCheck(dumpParamCheck())

	info := &pipeline.Info{}
	misc.ErrorCheck(info.Load(*dumpInfoFile))

	newHasher := func() hashing.Hasher { return hashing.NewNtHasher(info.KmerSize, info.Canonical) }
	var dbg dbgstore.Store
	if info.Backend == "bloom" {
		dbg = dbgstore.NewBloomStore(info.BloomBits)
	} else {
		dbg = dbgstore.NewExactSet()
	}
	store := cdbg.NewStore(info.KmerSize, info.TagDensity, newHasher, dbg)
	misc.ErrorCheck(store.Load(*dumpGraphFile))

	var outFile string
	var err error
	switch *dumpFormat {
	case "gfa":
		outFile = *dumpOut + ".gfa"
		err = serialize.WriteGFA(outFile, store)
	case "graphml":
		outFile = *dumpOut + ".graphml"
		err = serialize.WriteGraphML(outFile, store)
	default:
		outFile = *dumpOut + ".fasta"
		err = serialize.WriteFASTA(outFile, store)
	}
	misc.ErrorCheck(err)
	log.Printf("wrote %v export to %v", *dumpFormat, outFile)
	fmt.Printf("wrote %v export to %v\n", *dumpFormat, outFile)
}
