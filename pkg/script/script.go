// Package script builds projects from a small Lisp DSL evaluated by
// zygomys.
//
// A script declares nodes and wires them together:
//
//	; digits classifier
//	(project "mnist")
//	(node "data" "DatasetLoader" :dataset "MNIST")
//	(node "layers" "LayersEditor")
//	(layer "layers" "Flatten")
//	(layer "layers" "Dense" :units 128 :activation "relu")
//	(node "model" "ModelCompiler")
//	(connect "layers" "layers" "model" "layers")
//	(connect "data" "train" "model" "dataset")
//	(note "intro" "# Digits")
//
// Keyword arguments become node parameters. Every evaluation runs in a fresh
// sandbox with no filesystem access, so a script can only describe a graph.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"golang.org/x/sync/semaphore"

	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/project"
)

// EvalTimeout bounds an evaluation when the context carries no deadline.
const EvalTimeout = 5 * time.Second

// Ext is the file extension of project scripts.
const Ext = ".zy"

// ErrTimeout is returned when an evaluation does not finish in time.
var ErrTimeout = errors.New("script evaluation timed out")

// EvalError is a parse or runtime error in a script.
type EvalError struct {
	Line    int
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

type evalResult struct {
	project *project.Project
	err     error
}

// errInterrupted unwinds an evaluation whose context ended.
var errInterrupted = errors.New("script evaluation interrupted")

// evalSlots bounds the evaluations running at once, including ones still
// unwinding after their caller gave up.
var evalSlots = semaphore.NewWeighted(int64(max(runtime.NumCPU(), 2)))

// Evaluate runs source and returns the project it declares. Node kinds are
// resolved through catalog; a nil catalog means the built-in node library.
//
// When ctx ends the sandbox is interrupted at its next function call and
// Evaluate returns without waiting for it.
func Evaluate(ctx context.Context, source string, catalog *nodes.Catalog) (*project.Project, error) {
	if catalog == nil {
		catalog = nodes.NewCatalogWithBuiltins()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, EvalTimeout)
		defer cancel()
	}
	if err := evalSlots.Acquire(ctx, 1); err != nil {
		return nil, contextError(err)
	}

	ch := make(chan evalResult, 1)
	go func() {
		defer evalSlots.Release(1)
		defer func() {
			if r := recover(); r != nil {
				if r == errInterrupted {
					ch <- evalResult{err: errInterrupted}
					return
				}
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		p, err := evaluate(ctx, source, catalog)
		ch <- evalResult{project: p, err: err}
	}()

	select {
	case res := <-ch:
		if errors.Is(res.err, errInterrupted) {
			return nil, contextError(ctx.Err())
		}
		return res.project, res.err
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

func evaluate(ctx context.Context, source string, catalog *nodes.Catalog) (*project.Project, error) {
	p := project.New("")
	if strings.TrimSpace(source) == "" {
		return p, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	env.AddPreHook(func(*zygo.Zlisp, string, []zygo.Sexp) {
		if ctx.Err() != nil {
			panic(errInterrupted)
		}
	})
	registerBuiltins(env, &builder{project: p, catalog: catalog})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errInterrupted
		}
		return nil, parseZygomysError(err)
	}
	return p, nil
}

// LoadFile evaluates the script at path. A script without a project form
// is named after the file.
func LoadFile(ctx context.Context, path string, catalog *nodes.Catalog) (*project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	p, err := Evaluate(ctx, string(data), catalog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name() == "" {
		p.SetName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	return p, nil
}

var (
	linePattern      = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

func parseZygomysError(err error) *EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return &EvalError{Line: line, Message: strings.TrimSpace(m[2])}
		}
	}
	return &EvalError{Message: strings.TrimSpace(msg)}
}
