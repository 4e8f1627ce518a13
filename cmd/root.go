package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// the persistent command line arguments, shared by every subcommand
var (
	proc      *int    // number of processors to use
	profiling *bool   // create profile for go pprof
	logFile   *string // file to write the log to
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cdbgstream",
	Short: "stream sequencing reads into a compacted de Bruijn graph",
	Long: `
#####################################################################################
		cdbgstream: streaming compacted de Bruijn graph construction
#####################################################################################

 cdbgstream ingests FASTQ reads one at a time and maintains a compacted de Bruijn
 graph (cDBG) incrementally: unitig nodes are extended, split, merged or newly
 built as each read induces decision k-mers, without ever materialising the
 uncompacted graph.

 Use "build" to construct a graph from reads, "query" to inspect a built graph,
 and "dump" to export it to FASTA, GFA or GraphML.`,
}

// Execute is called by main.main(). It only needs to happen once to RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	proc = RootCmd.PersistentFlags().IntP("processors", "p", 1, "number of processors to use")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile cdbgstream using the go tool pprof")
	logFile = RootCmd.PersistentFlags().String("logFile", "./cdbgstream.log", "file to write the log to")
}
