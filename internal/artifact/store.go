package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"genaid/internal/common/fsutil"
	"genaid/internal/events"
)

// Status reports how Download satisfied a request.
type Status string

const (
	StatusExists     Status = "exists"
	StatusDownloaded Status = "downloaded"
)

// DefaultBufferSize is the fixed transfer buffer used by Download.
const DefaultBufferSize = 64 * 1024

// tempPrefix marks in-flight downloads; such files are never reported.
const tempPrefix = ".download-"

// Artifact describes a model file present in the storage root.
type Artifact struct {
	FileName string
	Path     string
	Size     int64
	ModTime  time.Time
}

// Store manages model files under one storage root.
type Store struct {
	root      string
	fetcher   Fetcher
	bufSize   int
	publisher events.Publisher
	log       zerolog.Logger
}

// StoreConfig encapsulates all tunables for Store construction.
type StoreConfig struct {
	// Root is the storage directory; '~' is expanded and the directory created.
	Root    string
	Fetcher Fetcher
	// BufferSize defaults to DefaultBufferSize.
	BufferSize int
	Publisher  events.Publisher
	Logger     *zerolog.Logger
}

// NewStore resolves the storage root and returns a Store over it.
func NewStore(cfg StoreConfig) (*Store, error) {
	root, err := fsutil.ResolveDir(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	s := &Store{
		root:      root,
		fetcher:   cfg.Fetcher,
		bufSize:   cfg.BufferSize,
		publisher: events.OrNop(cfg.Publisher),
		log:       zerolog.Nop(),
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(0)
	}
	if s.bufSize <= 0 {
		s.bufSize = DefaultBufferSize
	}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "artifact").Logger()
	}
	return s, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string { return s.root }

// ValidateFileName rejects names that are not a single, plain path element.
func ValidateFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "",
		name == ".", name == "..",
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, 0),
		strings.HasPrefix(name, tempPrefix):
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return nil
}

// Path returns the local path for fileName.
func (s *Store) Path(fileName string) (string, error) {
	if err := ValidateFileName(fileName); err != nil {
		return "", err
	}
	return filepath.Join(s.root, fileName), nil
}

// Exists reports whether fileName is present and its local path. It has no
// side effects and is safe to call from any goroutine.
func (s *Store) Exists(fileName string) (bool, string) {
	p, err := s.Path(fileName)
	if err != nil {
		return false, ""
	}
	if !fsutil.FileExists(p) {
		return false, p
	}
	return true, p
}

// Download fetches url into fileName unless the file is already present, in
// which case no network I/O happens and StatusExists is returned.
func (s *Store) Download(ctx context.Context, url, fileName string) (string, Status, error) {
	p, err := s.Path(fileName)
	if err != nil {
		return "", "", err
	}
	if fsutil.FileExists(p) {
		s.log.Debug().Str("event", "download_skip").Str("file", fileName).Msg("artifact present")
		return p, StatusExists, nil
	}

	startTs := time.Now()
	s.log.Info().Str("event", "download_start").Str("file", fileName).Str("url", url).Msg("artifact download")
	s.publisher.Publish(events.Event{Name: "download_start", Model: fileName, Fields: map[string]any{"url": url}})

	n, err := s.transfer(ctx, url, p)
	if err != nil {
		s.log.Error().Str("event", "download_failed").Str("file", fileName).Err(err).Msg("artifact download")
		s.publisher.Publish(events.Event{Name: "download_failed", Model: fileName, Fields: map[string]any{"error": err.Error()}})
		return "", "", err
	}
	s.log.Info().Str("event", "download_done").Str("file", fileName).Int64("bytes", n).Dur("dur", time.Since(startTs)).Msg("artifact download")
	s.publisher.Publish(events.Event{Name: "download_done", Model: fileName, Fields: map[string]any{"bytes": n}})
	return p, StatusDownloaded, nil
}

// transfer streams url into a temp file next to dst and renames it into place.
func (s *Store) transfer(ctx context.Context, url, dst string) (written int64, err error) {
	rc, err := s.fetcher.Open(ctx, url)
	if err != nil {
		return 0, &TransportError{URL: url, Err: err}
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(s.root, tempPrefix+"*")
	if err != nil {
		return 0, &FilesystemError{Op: "create", Path: s.root, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	buf := make([]byte, s.bufSize)
	for {
		nr, rerr := rc.Read(buf)
		if nr > 0 {
			nw, werr := tmp.Write(buf[:nr])
			written += int64(nw)
			if werr == nil && nw != nr {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, &FilesystemError{Op: "write", Path: tmpPath, Err: werr}
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return written, &TransportError{URL: url, Err: rerr}
		}
	}
	if err := tmp.Sync(); err != nil {
		return written, &FilesystemError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return written, &FilesystemError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return written, &FilesystemError{Op: "rename", Path: dst, Err: err}
	}
	committed = true
	return written, nil
}

// List returns the artifacts present in the storage root sorted by name.
// Directories and in-flight temporary files are skipped.
func (s *Store) List() ([]Artifact, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []Artifact
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		fi, err := e.Info()
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		out = append(out, Artifact{
			FileName: e.Name(),
			Path:     filepath.Join(s.root, e.Name()),
			Size:     fi.Size(),
			ModTime:  fi.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out, nil
}
