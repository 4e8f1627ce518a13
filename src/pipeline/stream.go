package pipeline

/*
 this part of the pipeline streams FASTQ reads from file/STDIN and threads
 them through the Streaming Compactor, one read at a time. Grounded on
 DataStreamer and FastqHandler from the teacher's sketch.go, trimmed down
 to the subset FASTQ ingestion needs, and on GraphSketcher/SketchIndexer
 from index.go for the log-and-accumulate-stats shape of the terminal
 stage of a pipeline.
*/

import (
	"bufio"
	"compress/gzip"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/will-rowe/cdbgstream/src/compactor"
	"github.com/will-rowe/cdbgstream/src/misc"
	"github.com/will-rowe/cdbgstream/src/seqio"
)

// DataStreamer is a pipeline process that streams data from STDIN/file
type DataStreamer struct {
	info   *Info
	input  []string
	output chan []byte
}

// NewDataStreamer is the constructor
func NewDataStreamer(info *Info) *DataStreamer {
	return &DataStreamer{info: info, output: make(chan []byte, BUFFERSIZE)}
}

// Connect is the method to connect the DataStreamer to some data source
func (proc *DataStreamer) Connect(input []string) {
	proc.input = input
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *DataStreamer) Run() {
	defer close(proc.output)
	var scanner *bufio.Scanner
	if len(proc.input) == 0 {
		scanner = bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			proc.output <- append([]byte(nil), scanner.Bytes()...)
		}
		if scanner.Err() != nil {
			log.Fatal(scanner.Err())
		}
		return
	}
	for i := 0; i < len(proc.input); i++ {
		fh, err := os.Open(proc.input[i])
		misc.ErrorCheck(err)
		defer fh.Close()
		if strings.HasSuffix(proc.input[i], ".gz") {
			gz, err := gzip.NewReader(fh)
			misc.ErrorCheck(err)
			defer gz.Close()
			scanner = bufio.NewScanner(gz)
		} else {
			scanner = bufio.NewScanner(fh)
		}
		for scanner.Scan() {
			proc.output <- append([]byte(nil), scanner.Bytes()...)
		}
		if scanner.Err() != nil {
			log.Fatal(scanner.Err())
		}
	}
}

// FastqHandler is a pipeline process that groups raw lines into FASTQ reads
type FastqHandler struct {
	info   *Info
	input  chan []byte
	output chan *seqio.FASTQread
}

// NewFastqHandler is the constructor
func NewFastqHandler(info *Info) *FastqHandler {
	return &FastqHandler{info: info, output: make(chan *seqio.FASTQread, BUFFERSIZE)}
}

// Connect is the method to join the input of this process with the output of a DataStreamer
func (proc *FastqHandler) Connect(previous *DataStreamer) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *FastqHandler) Run() {
	defer close(proc.output)
	var l1, l2, l3, l4 []byte
	for line := range proc.input {
		switch {
		case l1 == nil:
			l1 = line
		case l2 == nil:
			l2 = line
		case l3 == nil:
			l3 = line
		default:
			l4 = line
			newRead, err := seqio.NewFASTQread(l1, l2, l3, l4)
			if err != nil {
				log.Fatal(err)
			}
			proc.output <- newRead
			l1, l2, l3, l4 = nil, nil, nil, nil
		}
	}
}

// Ingester is the terminal pipeline process: it runs every FASTQ read
// through the Streaming Compactor and accumulates ingestion stats.
type Ingester struct {
	info       *Info
	input      chan *seqio.FASTQread
	compactor  *compactor.Compactor
	numReads   int64
	numRejects int64
}

// NewIngester is the constructor
func NewIngester(info *Info, c *compactor.Compactor) *Ingester {
	return &Ingester{info: info, compactor: c}
}

// Connect is the method to join the input of this process with the output of a FastqHandler
func (proc *Ingester) Connect(previous *FastqHandler) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *Ingester) Run() {
	for read := range proc.input {
		if err := read.BaseCheck(); err != nil {
			atomic.AddInt64(&proc.numRejects, 1)
			continue
		}
		if err := proc.compactor.UpdateSequence(read.Seq); err != nil {
			log.Printf("skipping read %s: %v", string(read.ID), err)
			atomic.AddInt64(&proc.numRejects, 1)
			continue
		}
		atomic.AddInt64(&proc.numReads, 1)
	}
	log.Printf("\treads ingested: %d", proc.numReads)
	if proc.numRejects > 0 {
		log.Printf("\treads rejected: %d", proc.numRejects)
	}
}

// Stats returns the number of reads ingested and rejected so far.
func (proc *Ingester) Stats() (ingested, rejected int64) {
	return atomic.LoadInt64(&proc.numReads), atomic.LoadInt64(&proc.numRejects)
}
