package catalogue

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zapponejosh/themedays-api/internal/themes"
)

// StaticFile is the name of the built-in catalogue.
const StaticFile = "theme_days_config.json"

//go:embed theme_days_config.json
var staticFS embed.FS

// Notification texts shown when a custom catalogue cannot be read.
const (
	NotifyTitle   = "Failed to load custom theme(s)"
	NotifyMessage = "Failed to load custom theme due to incorrect format. See the logs for more information."
)

// Notifier surfaces problems with user supplied catalogues to the user.
type Notifier interface {
	Notify(ctx context.Context, title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, title, message string)

func (f NotifierFunc) Notify(ctx context.Context, title, message string) {
	f(ctx, title, message)
}

// FileError reports a catalogue file that was skipped.
type FileError struct {
	Path   string
	Custom bool
	Err    error
}

func (e *FileError) Error() string {
	kind := "static"
	if e.Custom {
		kind = "custom"
	}
	return fmt.Sprintf("%s catalogue %s: %v", kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Catalogue is the merged result of one load: the static descriptors
// followed by every custom file's descriptors.
type Catalogue struct {
	Descriptors []themes.Descriptor
	Files       []string
	Problems    []*FileError
}

// Loader reads the static catalogue and any custom catalogues below
// CustomDir. A zero Loader reads only the embedded catalogue.
type Loader struct {
	// Static and StaticPath locate the built-in catalogue. They default to
	// the embedded file.
	Static     fs.FS
	StaticPath string

	// CustomDir is searched recursively for *.json files. A missing
	// directory is not an error.
	CustomDir string

	Logger   *slog.Logger
	Notifier Notifier
}

// NewLoader returns a loader for the embedded catalogue plus customDir.
func NewLoader(customDir string, logger *slog.Logger, notifier Notifier) *Loader {
	return &Loader{CustomDir: customDir, Logger: logger, Notifier: notifier}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// Load reads every catalogue file. Files that cannot be parsed are logged,
// recorded in Problems and skipped; the remaining files still load. Load
// fails only when the static catalogue cannot be opened at all or ctx ends.
func (l *Loader) Load(ctx context.Context) (*Catalogue, error) {
	cat := &Catalogue{}

	static, path := l.Static, l.StaticPath
	if static == nil {
		static = staticFS
	}
	if path == "" {
		path = StaticFile
	}

	data, err := fs.ReadFile(static, path)
	if err != nil {
		return nil, fmt.Errorf("read static catalogue: %w", err)
	}
	l.add(ctx, cat, path, data, false)

	if l.CustomDir != "" {
		if err := l.loadCustom(ctx, cat); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

func (l *Loader) loadCustom(ctx context.Context, cat *Catalogue) error {
	if _, err := os.Stat(l.CustomDir); errors.Is(err, fs.ErrNotExist) {
		l.logger().DebugContext(ctx, "no custom theme directory", slog.String("dir", l.CustomDir))
		return nil
	}

	l.logger().DebugContext(ctx, "loading custom themes", slog.String("dir", l.CustomDir))

	return filepath.WalkDir(l.CustomDir, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			l.problem(ctx, cat, &FileError{Path: path, Custom: true, Err: err})
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			l.problem(ctx, cat, &FileError{Path: path, Custom: true, Err: err})
			return nil
		}
		if n := l.add(ctx, cat, path, data, true); n >= 0 {
			l.logger().InfoContext(ctx, "loaded custom themes",
				slog.String("path", path),
				slog.Int("count", n),
			)
		}
		return nil
	})
}

// add parses one file into cat and returns the number of descriptors added,
// or -1 if the file was skipped.
func (l *Loader) add(ctx context.Context, cat *Catalogue, path string, data []byte, custom bool) int {
	descs, err := Parse(data)
	if err != nil {
		l.problem(ctx, cat, &FileError{Path: path, Custom: custom, Err: err})
		return -1
	}
	cat.Descriptors = append(cat.Descriptors, descs...)
	cat.Files = append(cat.Files, path)
	return len(descs)
}

func (l *Loader) problem(ctx context.Context, cat *Catalogue, fe *FileError) {
	cat.Problems = append(cat.Problems, fe)
	l.logger().ErrorContext(ctx, "invalid theme catalogue, skipping",
		slog.String("path", fe.Path),
		slog.Bool("custom", fe.Custom),
		slog.Any("error", fe.Err),
	)
	if fe.Custom && l.Notifier != nil {
		l.Notifier.Notify(ctx, NotifyTitle, NotifyMessage)
	}
}
