package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/mholt/archiver"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/will-rowe/cdbgstream/src/cdbg"
	"github.com/will-rowe/cdbgstream/src/compactor"
	"github.com/will-rowe/cdbgstream/src/dbgstore"
	"github.com/will-rowe/cdbgstream/src/hashing"
	"github.com/will-rowe/cdbgstream/src/misc"
	"github.com/will-rowe/cdbgstream/src/pipeline"
	"github.com/will-rowe/cdbgstream/src/reporting"
	"github.com/will-rowe/cdbgstream/src/version"
)

// the command line arguments
var (
	kmerSize      *uint                                                                 // size of k-mer
	tagDensity    *int                                                                  // approximate spacing between sampled interior unitig tags
	hashAlgo      *string                                                               // hashing backend: forward, canonical, nthash
	backend       *string                                                               // dBG membership backend: exact, bloom
	bloomBits     *int                                                                  // log2 of the number of cells in the bloom membership sketch
	fastqFiles    *[]string                                                             // FASTQ file(s) to build from
	outDir        *string                                                               // directory to save the built index to
	plotLengths   *bool                                                                 // plot a unitig length histogram after the build
	defaultOutDir = "./cdbgstream-index-" + string(time.Now().Format("20060102150405")) // default output dir
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Stream FASTQ reads into a compacted de Bruijn graph",
	Long:  `Stream FASTQ reads into a compacted de Bruijn graph`,
	Run: func(cmd *cobra.Command, args []string) {
		runBuild()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

func init() {
	kmerSize = buildCmd.Flags().UintP("kmerSize", "k", 21, "size of k-mer")
	tagDensity = buildCmd.Flags().IntP("tagDensity", "d", 8, "approximate spacing, in k-mers, between sampled interior unitig tags")
	hashAlgo = buildCmd.Flags().String("hashAlgo", "nthash", "k-mer hashing backend to use: forward, canonical, nthash")
	backend = buildCmd.Flags().String("backend", "exact", "dBG membership backend: exact, bloom")
	bloomBits = buildCmd.Flags().Int("bloomBits", 16, "log2 of the number of cells in the bloom membership sketch (only used with --backend bloom)")
	fastqFiles = buildCmd.Flags().StringSliceP("fastq", "f", []string{}, "FASTQ file(s) to build from - reads from STDIN if omitted")
	outDir = buildCmd.PersistentFlags().StringP("outDir", "o", defaultOutDir, "directory to save the built index to")
	plotLengths = buildCmd.Flags().Bool("plot", false, "plot a unitig length histogram after the build")
	RootCmd.AddCommand(buildCmd)
}

func buildParamCheck() error {
	if *kmerSize < 5 || *kmerSize > 63 {
		return fmt.Errorf("k-mer size must be between 5 and 63")
	}
	if *kmerSize%2 == 0 {
		return fmt.Errorf("k-mer size must be odd, to avoid a k-mer equalling its own reverse complement")
	}
	switch *hashAlgo {
	case "forward", "canonical", "nthash":
	default:
		return fmt.Errorf("unrecognised hashAlgo: %v (choose forward, canonical or nthash)", *hashAlgo)
	}
	switch *backend {
	case "exact", "bloom":
	default:
		return fmt.Errorf("unrecognised backend: %v (choose exact or bloom)", *backend)
	}
	for _, f := range *fastqFiles {
		if err := misc.CheckFile(f); err != nil {
			return err
		}
	}
	if _, err := os.Stat(*outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(*outDir, 0700); err != nil {
			return fmt.Errorf("can't create specified output directory")
		}
	}
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

// newHasherFunc builds the hasher constructor the Segment Finder, cDBG
// Store and Mutator all share, matched to the chosen --hashAlgo.
func newHasherFunc(k int, canonical bool) func() hashing.Hasher {
	switch *hashAlgo {
	case "forward":
		return func() hashing.Hasher { return hashing.NewForwardHasher(k) }
	case "canonical":
		return func() hashing.Hasher { return hashing.NewCanonicalHasher(k) }
	default:
		return func() hashing.Hasher { return hashing.NewNtHasher(k, canonical) }
	}
}

func runBuild() {
	if *profiling {
		defer profile.Start(profile.ProfilePath(*outDir)).Stop()
	}
	logFH := misc.StartLogging(*logFile)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("cdbgstream version %s", version.GetVersion())
	log.Printf("starting the build subcommand")
	log.Printf("checking parameters...")
	misc.ErrorCheck(buildParamCheck())
	log.Printf("\tprocessors: %d", *proc)
	log.Printf("\tk-mer size: %d", *kmerSize)
	log.Printf("\ttag density: %d", *tagDensity)
	log.Printf("\thash algorithm: %v", *hashAlgo)
	log.Printf("\tdBG backend: %v", *backend)

	k := int(*kmerSize)
	canonical := *hashAlgo != "forward"
	newHasher := newHasherFunc(k, canonical)

	var dbg dbgstore.Store
	if *backend == "bloom" {
		dbg = dbgstore.NewBloomStore(*bloomBits)
	} else {
		dbg = dbgstore.NewExactSet()
	}

	store := cdbg.NewStore(k, *tagDensity, newHasher, dbg)
	eventCounter := reporting.NewEventCounter()
	historyLog := reporting.NewHistoryLog()
	store.SetHistorySink(cdbg.HistorySinkFunc(func(e cdbg.HistoryEvent) {
		eventCounter.Notify(e)
		historyLog.Notify(e)
	}))

	comp := compactor.New(store, dbg, newHasher, *tagDensity)

	info := &pipeline.Info{
		Version:    version.GetVersion(),
		NumProc:    *proc,
		Profiling:  *profiling,
		KmerSize:   k,
		TagDensity: *tagDensity,
		Canonical:  canonical,
		Backend:    *backend,
		BloomBits:  *bloomBits,
		IndexDir:   *outDir,
		Build:      pipeline.BuildCmd{FastqFiles: *fastqFiles},
	}

	log.Printf("building the cDBG...")
	streamer := pipeline.NewDataStreamer(info)
	streamer.Connect(*fastqFiles)
	handler := pipeline.NewFastqHandler(info)
	handler.Connect(streamer)
	ingester := pipeline.NewIngester(info, comp)
	ingester.Connect(handler)

	pl := pipeline.NewPipeline()
	pl.AddProcesses(streamer, handler, ingester)
	pl.Run()

	ingested, rejected := ingester.Stats()
	log.Printf("\treads ingested: %d", ingested)
	log.Printf("\treads rejected: %d", rejected)

	summary := reporting.Summarize(store)
	log.Printf("\tdecision nodes: %d", summary.NumDnodes)
	log.Printf("\tunitig nodes: %d", summary.NumUnodes)
	log.Printf("\tconnected components: %d", summary.NumComponents)

	log.Printf("saving index files to %q...", *outDir)
	misc.ErrorCheck(info.Dump(*outDir + "/index.info"))
	misc.ErrorCheck(store.Dump(*outDir + "/index.cdbg"))
	misc.ErrorCheck(historyLog.Dump(*outDir + "/index.history"))
	if err := eventCounter.WriteSummary(os.Stdout); err != nil {
		log.Printf("could not write event summary: %v", err)
	}
	if err := summary.WriteSummary(os.Stdout); err != nil {
		log.Printf("could not write graph summary: %v", err)
	}
	if *plotLengths {
		plotFile := *outDir + "/unitig-lengths.png"
		if err := reporting.PlotUnitigLengths(store, plotFile); err != nil {
			log.Printf("could not plot unitig lengths: %v", err)
		} else {
			log.Printf("\tsaved unitig length plot to %v", plotFile)
		}
	}

	tarFile := *outDir + ".tar"
	if err := archiver.DefaultTar.Archive([]string{*outDir}, tarFile); err != nil {
		log.Printf("could not archive index directory: %v", err)
	} else {
		log.Printf("\tarchived index directory to %v", tarFile)
	}
	log.Println("finished")
}
