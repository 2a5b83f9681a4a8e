// Package filesystem discovers and fingerprints documents in the
// local upload directory.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
	"github.com/researchbot/researchbot/internal/logger"
)

const (
	// fingerprintWorkers bounds concurrent checksum computation.
	fingerprintWorkers = 4

	// checksumBlockSize is the read block for streamed hashing, so large
	// files never load fully into memory.
	checksumBlockSize = 64 * 1024
)

// DefaultExtensions are the file types accepted for ingestion.
var DefaultExtensions = []string{".pdf", ".txt", ".md", ".docx"}

// Ensure Scanner implements the interface.
var _ driven.Scanner = (*Scanner)(nil)

// Scanner walks the upload directory and fingerprints matching files.
type Scanner struct {
	root       string
	extensions map[string]bool
}

// NewScanner creates a scanner rooted at the upload directory.
// A nil extensions slice selects DefaultExtensions.
func NewScanner(root string, extensions []string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = true
	}
	return &Scanner{root: root, extensions: set}
}

// Scan fingerprints every matching file under the root, keyed by
// absolute path. A missing root is created rather than reported.
func (s *Scanner) Scan(ctx context.Context) (map[string]domain.Fingerprint, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		paths = append(paths, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking upload directory: %w", err)
	}

	var mu sync.Mutex
	files := make(map[string]domain.Fingerprint, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fingerprintWorkers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			fp, err := s.Fingerprint(ctx, path)
			if errors.Is(err, domain.ErrFileMissing) {
				// The file was removed mid-scan; the next pass sees it.
				logger.Debug("File vanished during scan: %s", path)
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			files[path] = fp
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fingerprinting files: %w", err)
	}
	return files, nil
}

// Fingerprint reads one file's identity from disk, streaming the
// checksum in fixed-size blocks.
func (s *Scanner) Fingerprint(ctx context.Context, path string) (domain.Fingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Fingerprint{}, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Fingerprint{}, fmt.Errorf("%w: %s", domain.ErrFileMissing, abs)
		}
		return domain.Fingerprint{}, fmt.Errorf("statting file: %w", err)
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Fingerprint{}, fmt.Errorf("%w: %s", domain.ErrFileMissing, abs)
		}
		return domain.Fingerprint{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, checksumBlockSize)
	for {
		if err := ctx.Err(); err != nil {
			return domain.Fingerprint{}, err
		}
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Fingerprint{}, fmt.Errorf("reading file: %w", err)
		}
	}

	return domain.Fingerprint{
		SourcePath: abs,
		FileSize:   info.Size(),
		ModTime:    info.ModTime().UTC(),
		Checksum:   hex.EncodeToString(h.Sum(nil)),
	}, nil
}
