package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Veraticus/splice/pkg/config"
	"github.com/Veraticus/splice/pkg/interfaces"
	"github.com/Veraticus/splice/pkg/types"
)

// DefaultPollInterval bounds how long a followed file goes unchecked when
// no filesystem event arrives.
const DefaultPollInterval = time.Second

// FollowSource reads a file and keeps waiting for appended lines at end of
// file, like tail -f. Input ends when the context is cancelled or the file
// is removed or renamed.
type FollowSource struct {
	ctx     context.Context
	path    string
	file    *os.File
	reader  *bufio.Reader
	watcher *fsnotify.Watcher
	partial strings.Builder
	poll    time.Duration
	done    bool
}

// Ensure FollowSource implements LineSource
var _ interfaces.LineSource = (*FollowSource)(nil)

// Follow opens path for following
func Follow(ctx context.Context, path string) (*FollowSource, error) {
	if path == "" || path == StdinName {
		return nil, types.ConfigError("--follow requires an input file")
	}

	// #nosec G304 - reading the user's chosen input is the whole point
	fh, err := os.Open(path)
	if err != nil {
		return nil, &types.Error{Kind: types.KindInput, Subject: path, Err: err}
	}
	info, err := fh.Stat()
	if err != nil || !info.Mode().IsRegular() {
		_ = fh.Close()
		if err == nil {
			err = fmt.Errorf("not a regular file")
		}
		return nil, &types.Error{Kind: types.KindInput, Subject: path, Err: err}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		_ = fh.Close()
		return nil, &types.Error{Kind: types.KindInput, Subject: path, Err: err}
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		_ = fh.Close()
		return nil, &types.Error{Kind: types.KindInput, Subject: path, Err: err}
	}

	return &FollowSource{
		ctx:     ctx,
		path:    path,
		file:    fh,
		reader:  bufio.NewReader(fh),
		watcher: w,
		poll:    DefaultPollInterval,
	}, nil
}

// SetPollInterval changes the fallback poll interval
func (f *FollowSource) SetPollInterval(d time.Duration) {
	if d > 0 {
		f.poll = d
	}
}

// ReadLine returns the next complete line, blocking at end of file until
// more data is appended.
func (f *FollowSource) ReadLine() (string, error) {
	for {
		chunk, err := f.reader.ReadString('\n')
		f.partial.WriteString(chunk)
		if err == nil {
			return f.take(), nil
		}
		if err != io.EOF {
			return "", &types.Error{Kind: types.KindRead, Subject: f.path, Err: err}
		}

		if f.done {
			return f.finish()
		}
		if err := f.wait(); err != nil {
			if err == io.EOF {
				f.done = true
				continue
			}
			return "", err
		}
	}
}

// take returns the buffered line and clears the buffer
func (f *FollowSource) take() string {
	line := f.partial.String()
	f.partial.Reset()
	return line
}

// finish flushes an unterminated last line, then reports io.EOF
func (f *FollowSource) finish() (string, error) {
	if f.partial.Len() > 0 {
		return f.take(), nil
	}
	return "", io.EOF
}

// wait blocks until the file may have grown. It returns io.EOF when the
// input has ended.
func (f *FollowSource) wait() error {
	timer := time.NewTimer(f.poll)
	defer timer.Stop()

	select {
	case <-f.ctx.Done():
		return io.EOF
	case event, ok := <-f.watcher.Events:
		if !ok {
			return io.EOF
		}
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) || f.gone() {
			if config.Debug() {
				fmt.Fprintf(os.Stderr, "splice: %s went away, ending input\n", f.path)
			}
			return io.EOF
		}
		return nil
	case err, ok := <-f.watcher.Errors:
		if !ok {
			return io.EOF
		}
		return &types.Error{Kind: types.KindRead, Subject: f.path, Err: err}
	case <-timer.C:
		if f.gone() {
			return io.EOF
		}
		return nil
	}
}

// gone reports whether path no longer names the file being read. Unlinking
// an open file only shows up as an attribute change.
func (f *FollowSource) gone() bool {
	current, err := os.Stat(f.path)
	if err != nil {
		return os.IsNotExist(err)
	}
	opened, err := f.file.Stat()
	if err != nil {
		return false
	}
	return !os.SameFile(current, opened)
}

// Name returns the followed path
func (f *FollowSource) Name() string {
	return f.path
}

// Close stops watching and closes the file
func (f *FollowSource) Close() error {
	werr := f.watcher.Close()
	ferr := f.file.Close()
	if ferr != nil {
		return ferr
	}
	return werr
}
