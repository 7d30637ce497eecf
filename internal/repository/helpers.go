package repository

import (
	"fmt"

	"github.com/google/uuid"
)

// nullStringOrValue returns nil for empty strings, otherwise returns the value
func nullStringOrValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// isUUID guards uuid columns from malformed path ids, which would otherwise surface as 500s
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// whereBuilder accumulates AND conditions with numbered placeholders
type whereBuilder struct {
	clause string
	args   []interface{}
}

func newWhere(base string, args ...interface{}) *whereBuilder {
	return &whereBuilder{clause: "WHERE " + base, args: args}
}

// add appends a condition; each "?" in cond is replaced by the next placeholder bound to arg
func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	n := len(w.args)
	out := make([]byte, 0, len(cond)+4)
	for i := 0; i < len(cond); i++ {
		if cond[i] == '?' {
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, cond[i])
	}
	w.clause += " AND " + string(out)
}

// next returns the placeholder index after the current arguments
func (w *whereBuilder) next() int {
	return len(w.args) + 1
}
