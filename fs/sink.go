// Package fs provides file-based result sinks.
package fs

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/brawl"
)

// Ensure Sink implements brawl.ResultSink at compile time.
var _ brawl.ResultSink = (*Sink)(nil)

// Sink writes visited URLs to a text file, one per line.
//
// The list is written to a temporary sibling and renamed over the target once
// complete. A failed write leaves any previous file untouched.
type Sink struct {
	path string
	perm os.FileMode
}

// NewSink creates a Sink that writes to path.
func NewSink(path string) *Sink {
	return &Sink{path: path, perm: 0o644}
}

// Path returns the target file path.
func (s *Sink) Path() string {
	return s.path
}

func (s *Sink) WriteURLs(ctx context.Context, urls []string) error {
	if s.path == "" {
		return brawl.Errorf(brawl.EINVALID, "output path required")
	}
	if err := ctx.Err(); err != nil {
		return brawl.Errorf(brawl.EOUTPUT, "write %s: %v", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return brawl.Errorf(brawl.EOUTPUT, "create temp file for %s: %v", s.path, err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, u := range urls {
		if _, err := w.WriteString(u); err != nil {
			return brawl.Errorf(brawl.EOUTPUT, "write %s: %v", s.path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return brawl.Errorf(brawl.EOUTPUT, "write %s: %v", s.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return brawl.Errorf(brawl.EOUTPUT, "write %s: %v", s.path, err)
	}
	if err := tmp.Chmod(s.perm); err != nil {
		return brawl.Errorf(brawl.EOUTPUT, "chmod %s: %v", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		return brawl.Errorf(brawl.EOUTPUT, "sync %s: %v", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return brawl.Errorf(brawl.EOUTPUT, "close %s: %v", s.path, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return brawl.Errorf(brawl.EOUTPUT, "rename into %s: %v", s.path, err)
	}
	renamed = true
	return nil
}
