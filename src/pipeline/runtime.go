package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"os"
)

// Info stores the runtime information shared by every cdbgstream command,
// grounded on the teacher's own pipeline.Info - generalized here from a
// single LSH Ensemble index handle to the cDBG's own build parameters.
type Info struct {
	Version    string
	NumProc    int
	Profiling  bool
	KmerSize   int
	TagDensity int
	Canonical  bool
	Backend    string // "exact" or "bloom"
	BloomBits  int
	IndexDir   string

	Build BuildCmd
	Query QueryCmd
}

// BuildCmd stores the runtime info for the build command.
type BuildCmd struct {
	FastqFiles []string
}

// QueryCmd stores the runtime info for the query command.
type QueryCmd struct {
	GraphFile string
}

// Dump is a method to dump the pipeline info to file
func (Info *Info) Dump(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	encoder := gob.NewEncoder(fh)
	return encoder.Encode(Info)
}

// Load is a method to load Info from file
func (Info *Info) Load(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return Info.LoadFromBytes(data)
}

// LoadFromBytes is a method to load Info from bytes
func (Info *Info) LoadFromBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("cdbgstream: run info appears empty")
	}
	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	return decoder.Decode(Info)
}
