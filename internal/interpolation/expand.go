// Package interpolation expands ${VAR} and ${VAR:default} references in
// configuration values.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrUndefinedVariable is returned for a reference without a default whose
// variable is not set.
var ErrUndefinedVariable = errors.New("environment variable not defined")

// captures: name, optional colon, default
var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// LookupFunc resolves a variable name. os.LookupEnv is the usual choice.
type LookupFunc func(name string) (string, bool)

// Expander replaces variable references using its LookupFunc.
type Expander struct {
	lookup LookupFunc
}

// New creates an Expander. A nil lookup reads the process environment.
func New(lookup LookupFunc) *Expander {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Expander{lookup: lookup}
}

// Expand replaces every reference in input. "${VAR:}" expands to the empty
// string when VAR is unset. Unresolved references are left in place and
// reported together.
func (e *Expander) Expand(input string) (string, error) {
	var missing []error
	out := refPattern.ReplaceAllStringFunc(input, func(match string) string {
		m := refPattern.FindStringSubmatch(match)
		name, hasDefault, def := m[1], m[2] == ":", m[3]

		if v, ok := e.lookup(name); ok {
			return v
		}
		if hasDefault {
			return def
		}
		missing = append(missing, fmt.Errorf("%w: %s", ErrUndefinedVariable, name))
		return match
	})
	return out, errors.Join(missing...)
}

// ExpandEnv expands input against the process environment.
func ExpandEnv(input string) (string, error) {
	return New(nil).Expand(input)
}
