package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/regulumdb/regulumdb/internal/frame"
)

// LoadFrames reads a frame document from path. A file is compiled as CUE
// (JSON is valid CUE); a directory is loaded as one CUE instance, so a schema
// may be split across files.
func LoadFrames(path string) (*frame.AllFrames, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("frames: %w", err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("frames: %w", err)
		}
		return CompileFramesBytes(data, path)
	}

	files, err := FindCUEFiles(path)
	if err != nil {
		return nil, fmt.Errorf("frames: scanning %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("frames: no CUE files found in %s", path)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return nil, fmt.Errorf("frames: no CUE instances loaded from %s", path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	return CompileFrames(v)
}

// FindCUEFiles returns the .cue files directly inside dir, sorted by name.
func FindCUEFiles(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*.cue"))
}
