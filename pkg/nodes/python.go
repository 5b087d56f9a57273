package nodes

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// pyValue renders a decoded parameter value as a Python literal. Lists
// become tuples when they hold only numbers, which is what Keras expects
// for shapes and kernel sizes.
func pyValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []string:
		items := make([]string, len(x))
		for i, s := range x {
			items[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case []any:
		items := make([]string, len(x))
		numeric := len(x) > 0
		for i, e := range x {
			items[i] = pyValue(e)
			switch e.(type) {
			case int, int64, float64:
			default:
				numeric = false
			}
		}
		if numeric {
			if len(items) == 1 {
				return "(" + items[0] + ",)"
			}
			return "(" + strings.Join(items, ", ") + ")"
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		keys := sortedKeys(x)
		items := make([]string, len(keys))
		for i, k := range keys {
			items[i] = strconv.Quote(k) + ": " + pyValue(x[k])
		}
		return "{" + strings.Join(items, ", ") + "}"
	}
	return strconv.Quote(fmt.Sprint(v))
}

// pyKwargs renders m as sorted keyword arguments, leaving out skip.
func pyKwargs(m map[string]any, skip ...string) string {
	var args []string
	for _, k := range sortedKeys(m) {
		if slices.Contains(skip, k) {
			continue
		}
		args = append(args, k+"="+pyValue(m[k]))
	}
	return strings.Join(args, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
