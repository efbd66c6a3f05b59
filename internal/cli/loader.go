package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/regulumdb/regulumdb/internal/compiler"
	"github.com/regulumdb/regulumdb/internal/frame"
	"github.com/regulumdb/regulumdb/internal/graph"
	"github.com/regulumdb/regulumdb/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeStoreFailed = "E007" // Store open, import or snapshot failed

	ErrCodeInvalidFrame   = "E101" // Frame document has a bad shape
	ErrCodeInvalidDataset = "E102" // Dataset file cannot be resolved
	ErrCodeInvalidInput   = "E103" // Filter, ordering or path literal rejected
	ErrCodeNoDocument     = "E104" // No document under the requested id
)

// LoadError represents an error that occurred while loading frames, a
// dataset or the store.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadFrames loads a frame document and classifies any failure with a CLI
// error code.
func LoadFrames(path string) (*frame.AllFrames, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("frames not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing frames: %v", err)}
	}
	if info.IsDir() {
		files, err := compiler.FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	}

	frames, err := compiler.LoadFrames(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return frames, nil
}

// convertCompileError converts a compiler error to a LoadError with position
// info. Errors CUE itself raised are build failures; the rest are frames that
// parsed but do not describe a schema.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := ErrCodeInvalidFrame
		if compileErr.Field == "cue" {
			code = ErrCodeBuildFailed
		}
		return &LoadError{Code: code, Message: compileErr.Message, Pos: compileErr.Pos}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// loadCode returns the code carried by a LoadError, or fallback.
func loadCode(err error, fallback string) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Pos.IsValid() {
			return loadErr.Code, fmt.Sprintf("%s:%d:%d: %s",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), loadErr.Message)
		}
		return loadErr.Code, loadErr.Message
	}
	return fallback, err.Error()
}

// session is the read side shared by doc, export, query and path: a frame
// document and a snapshot of an existing store.
type session struct {
	st     *store.Store
	frames *frame.AllFrames
	layer  *graph.MemoryLayer
	logger *slog.Logger
}

// openSession loads frames and snapshots the store at dbPath. The store must
// already exist; reads never create one. The caller closes the session.
func openSession(ctx context.Context, dbPath, framesPath string, logger *slog.Logger) (*session, error) {
	frames, err := LoadFrames(framesPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", dbPath)}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("failed to open database: %v", err)}
	}

	layer, err := st.Snapshot(ctx)
	if err != nil {
		st.Close()
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("failed to read database: %v", err)}
	}
	logger.Debug("session opened", "db", dbPath, "frames", framesPath, "classes", len(frames.Names()))
	return &session{st: st, frames: frames, layer: layer, logger: logger}, nil
}

func (s *session) Close() error {
	return s.st.Close()
}

// instanceName contracts a node id for display.
func (s *session) instanceName(id graph.ID) string {
	name, ok := s.layer.IDSubject(id)
	if !ok {
		return fmt.Sprintf("_:%d", id)
	}
	return s.frames.Context.ContractInstance(name)
}
