package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/yildizm/LogPanel/internal/logger"
	"github.com/yildizm/LogPanel/internal/logs"
)

// Follower scans files for appended lines while started
type Follower struct {
	paths  []string
	loader *Loader
	onRows func(logs.RowSet)
	log    *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	watcher *fsnotify.Watcher
	files   map[string]*os.File
}

// NewFollower creates a follower that hands parsed rows to onRows. onRows is
// called from the follower's goroutine.
func NewFollower(paths []string, loader *Loader, onRows func(logs.RowSet), log *logger.Logger) *Follower {
	if log == nil {
		log = logger.Nop()
	}
	return &Follower{
		paths:  paths,
		loader: loader,
		onRows: onRows,
		log:    log.WithComponent("follow"),
	}
}

// Running reports whether the follower is watching
func (f *Follower) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

// Start begins watching. Only lines written after Start are reported.
func (f *Follower) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		return nil
	}
	if len(f.paths) == 0 {
		return fmt.Errorf("nothing to follow: input is not a file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	files := make(map[string]*os.File, len(f.paths))
	cleanup := func() {
		for _, file := range files {
			f.closeFile(file)
		}
		f.closeWatcher(watcher)
	}

	for _, path := range f.paths {
		clean := filepath.Clean(path)
		file, err := openAtEnd(clean)
		if err != nil {
			cleanup()
			return err
		}
		files[clean] = file

		if err := watcher.Add(clean); err != nil {
			cleanup()
			return fmt.Errorf("failed to watch file: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.done = make(chan struct{})
	f.watcher = watcher
	f.files = files

	go f.loop(ctx, watcher, files, f.done)
	f.log.Info("following files", logger.F("files", strings.Join(f.paths, ",")))
	return nil
}

// Stop stops watching and waits for the watch loop to exit
func (f *Follower) Stop() {
	f.mu.Lock()
	cancel, done, watcher, files := f.cancel, f.done, f.watcher, f.files
	f.cancel, f.done, f.watcher, f.files = nil, nil, nil, nil
	f.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	f.closeWatcher(watcher)
	for _, file := range files {
		f.closeFile(file)
	}
	f.log.Info("stopped following files")
}

func (f *Follower) loop(ctx context.Context, watcher *fsnotify.Watcher, files map[string]*os.File, done chan struct{}) {
	defer close(done)

	// unterminated tails per file, held until a later write ends the line
	partial := make(map[string]string, len(files))

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write != fsnotify.Write {
				continue
			}
			path := filepath.Clean(event.Name)
			file := files[path]
			if file == nil {
				continue
			}
			tail, err := f.readNew(ctx, file, filepath.Base(event.Name), partial[path])
			partial[path] = tail
			if err != nil {
				f.log.Warn("failed to read appended lines", logger.F("file", event.Name), logger.Err(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.log.Warn("watcher error", logger.Err(err))
		}
	}
}

// readNew reads what was appended since the last call. pending is the
// unterminated tail left by that call; the new tail is returned.
func (f *Follower) readNew(ctx context.Context, file *os.File, name, pending string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return pending, fmt.Errorf("failed to read appended data: %w", err)
	}

	lines, tail := splitCompleteLines(pending + string(data))
	if len(lines) == 0 || ctx.Err() != nil {
		return tail, nil
	}

	rows, err := f.loader.ParseLines(lines, name)
	if err != nil {
		return tail, err
	}
	f.log.Debug("read appended lines", logger.F("file", name), logger.Count(len(rows)))
	if f.onRows != nil && len(rows) > 0 {
		f.onRows(rows)
	}
	return tail, nil
}

// splitCompleteLines returns the non-blank newline-terminated lines of text
// and the trailing fragment that has no newline yet
func splitCompleteLines(text string) ([]string, string) {
	end := strings.LastIndexByte(text, '\n')
	if end < 0 {
		return nil, text
	}

	var lines []string
	for _, line := range strings.Split(text[:end], "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, text[end+1:]
}

func openAtEnd(path string) (*os.File, error) {
	if err := ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	// #nosec G304 - path is validated above
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to seek to end of file: %w", err)
	}
	return file, nil
}

func (f *Follower) closeWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil {
		f.log.Debug("failed to close watcher", logger.Err(err))
	}
}

func (f *Follower) closeFile(file *os.File) {
	if err := file.Close(); err != nil {
		f.log.Debug("failed to close file", logger.Err(err))
	}
}
