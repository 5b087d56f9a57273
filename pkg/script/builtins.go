package script

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/davafons/dial/pkg/nodeeditor"
	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/project"
)

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites the parts of the DSL zygomys does not read
// natively: ; line comments become // comments and :keywords become
// "__kw_keyword" string literals. Hyphens in keywords turn into
// underscores so :batch-size names the batch_size parameter. String
// literals are left untouched.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"':
			j := i + 1
			for j < len(b) && b[j] != '"' {
				if b[j] == '\\' {
					j++
				}
				j++
			}
			j = min(j+1, len(b))
			out = append(out, b[i:j]...)
			i = j
		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			name := strings.ReplaceAll(string(b[i+1:j]), "-", "_")
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, name...)
			out = append(out, '"')
			i = j
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// args splits a call's arguments into positional values and keyword
// parameters.
type args struct {
	positional []zygo.Sexp
	kw         nodeeditor.Params
}

func parseArgs(in []zygo.Sexp) (args, error) {
	a := args{kw: nodeeditor.Params{}}
	for i := 0; i < len(in); i++ {
		name, ok := keyword(in[i])
		if !ok {
			a.positional = append(a.positional, in[i])
			continue
		}
		if i+1 >= len(in) {
			a.kw[name] = true
			continue
		}
		v, err := toValue(in[i+1])
		if err != nil {
			return a, fmt.Errorf(":%s: %w", name, err)
		}
		a.kw[name] = v
		i++
	}
	return a, nil
}

func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// toValue converts a zygomys value into the plain Go types node parameters
// hold. Integers become int64, matching what the TOML decoder produces.
func toValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpStr:
		if name, ok := keyword(v); ok {
			return name, nil
		}
		return v.S, nil
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpArray:
		return toValues(v.Val)
	case *zygo.SexpPair:
		items, err := zygo.ListToArray(v)
		if err != nil {
			return nil, err
		}
		return toValues(items)
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("unsupported value %s", s.SexpString(nil))
}

func toValues(items []zygo.Sexp) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, it := range items {
		v, err := toValue(it)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", s.SexpString(nil))
}

func stringArgs(fn string, in []zygo.Sexp, names ...string) ([]string, error) {
	if len(in) < len(names) {
		return nil, fmt.Errorf("%s: expected %s", fn, strings.Join(names, ", "))
	}
	out := make([]string, len(names))
	for i, name := range names {
		s, err := toString(in[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn, name, err)
		}
		out[i] = s
	}
	return out, nil
}

// builder accumulates the project while a script runs.
type builder struct {
	project *project.Project
	catalog *nodes.Catalog
}

func (b *builder) addNode(kind, id, title string, params nodeeditor.Params) error {
	n, err := b.catalog.Build(kind, id, params, nodeeditor.WithTitle(title))
	if err != nil {
		return err
	}
	return b.project.Scene().AddNode(n)
}

type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the DSL forms into env. Each form returns the
// id it touched so scripts can bind it.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	forms := map[string]builtinFunc{
		// (project "name")
		"project": func(_ *zygo.Zlisp, fn string, in []zygo.Sexp) (zygo.Sexp, error) {
			s, err := stringArgs(fn, in, "name")
			if err != nil {
				return zygo.SexpNull, err
			}
			b.project.SetName(s[0])
			return &zygo.SexpStr{S: s[0]}, nil
		},

		// (node "id" "Kind" ["title"] :key value ...)
		"node": func(_ *zygo.Zlisp, fn string, in []zygo.Sexp) (zygo.Sexp, error) {
			a, err := parseArgs(in)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			s, err := stringArgs(fn, a.positional, "id", "kind")
			if err != nil {
				return zygo.SexpNull, err
			}
			var title string
			if len(a.positional) > 2 {
				if title, err = toString(a.positional[2]); err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: title: %w", fn, err)
				}
			}
			if err := b.addNode(s[1], s[0], title, a.kw); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %s: %w", fn, s[0], err)
			}
			return &zygo.SexpStr{S: s[0]}, nil
		},

		// (layer "nodeID" "Dense" :units 10 ...)
		"layer": func(_ *zygo.Zlisp, fn string, in []zygo.Sexp) (zygo.Sexp, error) {
			a, err := parseArgs(in)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			s, err := stringArgs(fn, a.positional, "node", "type")
			if err != nil {
				return zygo.SexpNull, err
			}
			n, ok := b.project.Scene().Node(s[0])
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s: %w: %s", fn, nodeeditor.ErrUnknownNode, s[0])
			}
			layer := map[string]any{"type": s[1]}
			for k, v := range a.kw {
				layer[k] = v
			}
			params := n.Params()
			params["layers"] = append(params.Maps("layers"), layer)
			return &zygo.SexpStr{S: s[0]}, nil
		},

		// (connect "from" "output" "to" "input")
		"connect": func(_ *zygo.Zlisp, fn string, in []zygo.Sexp) (zygo.Sexp, error) {
			s, err := stringArgs(fn, in, "from", "output", "to", "input")
			if err != nil {
				return zygo.SexpNull, err
			}
			if err := b.project.Scene().Connect(s[0], s[1], s[2], s[3]); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %s.%s -> %s.%s: %w", fn, s[0], s[1], s[2], s[3], err)
			}
			return zygo.SexpNull, nil
		},

		// (note "id" "markdown")
		"note": func(_ *zygo.Zlisp, fn string, in []zygo.Sexp) (zygo.Sexp, error) {
			s, err := stringArgs(fn, in, "id", "text")
			if err != nil {
				return zygo.SexpNull, err
			}
			if err := b.addNode(nodes.KindNote, s[0], "", nodeeditor.Params{"text": s[1]}); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %s: %w", fn, s[0], err)
			}
			return &zygo.SexpStr{S: s[0]}, nil
		},
	}
	for name, fn := range forms {
		env.AddFunction(name, fn)
	}
}
