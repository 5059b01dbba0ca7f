// Package targ analyzes source files for calls that violate the
// documented argument preconditions of modeled functions.
package targ

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"strings"

	"github.com/gnolang/targ/internal/checker"
	"github.com/gnolang/targ/internal/summary"
	tt "github.com/gnolang/targ/internal/types"
)

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a
// SourceCode struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}

// CheckEngine is the interface the processing helpers run files
// through.
type CheckEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreFunc(name string)
}

// Engine resolves calls against a summary registry and collects
// issues. The built-in models are always loaded; a summaries file
// adds or overrides models.
type Engine struct {
	sums     []summary.Summary
	ignored  map[string]bool
	maxPaths int

	checker *checker.Checker
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPaths bounds per-function path forking.
func WithMaxPaths(n int) Option {
	return func(e *Engine) { e.maxPaths = n }
}

// New creates an engine with the built-in models plus, when
// summariesPath is not empty, the models loaded from that YAML file.
func New(summariesPath string, opts ...Option) (*Engine, error) {
	engine := &Engine{ignored: make(map[string]bool)}
	engine.sums = summary.Builtins()

	if summariesPath != "" {
		extra, err := summary.Load(summariesPath)
		if err != nil {
			return nil, fmt.Errorf("loading summaries from %s: %w", summariesPath, err)
		}
		engine.sums = append(engine.sums, extra...)
	}

	for _, opt := range opts {
		opt(engine)
	}
	if err := engine.rebuild(); err != nil {
		return nil, err
	}
	return engine, nil
}

// IgnoreFunc removes one modeled function from checking.
func (e *Engine) IgnoreFunc(name string) {
	e.ignored[name] = true
	// the registry itself is immutable; build a fresh one
	_ = e.rebuild()
}

func (e *Engine) rebuild() error {
	kept := make([]summary.Summary, 0, len(e.sums))
	for _, sum := range e.sums {
		if e.ignored[sum.Name] {
			continue
		}
		kept = append(kept, sum)
	}
	reg, err := summary.NewRegistry(kept...)
	if err != nil {
		return err
	}
	var opts []checker.Option
	if e.maxPaths > 0 {
		opts = append(opts, checker.WithMaxPaths(e.maxPaths))
	}
	e.checker = checker.New(reg, opts...)
	return nil
}

// Run analyzes one file.
func (e *Engine) Run(filePath string) ([]tt.Issue, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filePath, err)
	}
	return e.runNamed(filePath, content)
}

// RunSource analyzes in-memory source.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	return e.runNamed("source.go", source)
}

func (e *Engine) runNamed(filename string, content []byte) ([]tt.Issue, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	return e.checker.CheckFile(filename, file, fset)
}
