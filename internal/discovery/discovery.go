package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/rscript"
)

// Parser turns one script file into a parse result.
type Parser interface {
	Parse(path string) rscript.Result
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(path string) rscript.Result

// Parse implements Parser.
func (f ParserFunc) Parse(path string) rscript.Result { return f(path) }

// Loader runs discovery passes. It holds no state between passes.
type Loader struct {
	parser Parser
	log    processinglog.Logger
	suffix string
}

// Option configures a Loader.
type Option func(*Loader)

// WithSuffix overrides the script-description suffix (default ".rsx").
func WithSuffix(suffix string) Option {
	return func(l *Loader) { l.suffix = suffix }
}

// NewLoader returns a Loader that parses with parser and reports failures to
// logger. A nil logger discards entries.
func NewLoader(parser Parser, logger processinglog.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = processinglog.Discard
	}
	l := &Loader{parser: parser, log: logger, suffix: rscript.Suffix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Suffix returns the script-description suffix the loader matches.
func (l *Loader) Suffix() string { return l.suffix }

// Discover walks folders in order and returns every accepted algorithm, in
// folder order and then walk order. Missing folders are skipped. Discover
// never fails; problems with individual files only produce log entries.
func (l *Loader) Discover(folders []string) []*rscript.Algorithm {
	var algs []*rscript.Algorithm
	for _, folder := range folders {
		algs = append(algs, l.loadFromFolder(folder)...)
	}
	return algs
}

// loadFromFolder walks a single folder and collects accepted algorithms. A
// folder reached through a symlink is walked at its target, while source
// paths stay under the configured folder.
func (l *Loader) loadFromFolder(folder string) []*rscript.Algorithm {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil
	}
	root, err := filepath.EvalSymlinks(folder)
	if err != nil {
		return nil
	}

	var algs []*rscript.Algorithm
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), l.suffix) {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if alg := l.loadFile(filepath.Join(folder, rel)); alg != nil {
			algs = append(algs, alg)
		}
		return nil
	})
	return algs
}

// isRegular reports whether d is a regular file or a symlink to one. FIFOs,
// sockets and devices would block or fail on read.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// loadFile parses one file and applies the acceptance rules.
func (l *Loader) loadFile(path string) *rscript.Algorithm {
	res := l.parse(path)

	switch {
	case res.Failure != nil && res.Failure.Kind == rscript.FailureMalformed:
		l.log.Add(processinglog.SeverityError, res.Failure.Message)
		return nil
	case res.Failure != nil:
		l.logUnexpected(path, res.Failure.Message)
		return nil
	case res.Algorithm == nil:
		l.logUnexpected(path, "parser returned no algorithm")
		return nil
	case strings.TrimSpace(res.Algorithm.Name) == "":
		// Unnamed scripts are templates or work in progress.
		return nil
	}
	return res.Algorithm
}

// parse calls the parser, converting a panic into an unexpected failure.
func (l *Loader) parse(path string) (res rscript.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = rscript.Unexpected(fmt.Errorf("parser panic: %v", r))
		}
	}()
	return l.parser.Parse(path)
}

func (l *Loader) logUnexpected(path, description string) {
	l.log.Add(processinglog.SeverityError,
		fmt.Sprintf("Could not load R script: %s\n%s", filepath.Base(path), description))
}

// Discover is a one-shot pass with the default suffix.
func Discover(folders []string, parser Parser, logger processinglog.Logger) []*rscript.Algorithm {
	return NewLoader(parser, logger).Discover(folders)
}
