// Package options holds the set of boolean flags passed to the embedded CoffeeScript
// compiler, and renders them into the object literal its compile function expects.
package options

import (
	"slices"
	"strings"
)

// bareArg is the only command-line token ParseArgs recognizes.
const bareArg = "--bare"

// OptionSet is an ordered, duplicate-free, immutable set of flags.
// The zero value is an empty set.
type OptionSet struct {
	flags []Flag
}

// New creates an OptionSet. Unknown and duplicate flags are dropped; the set is kept in
// enumeration order regardless of argument order.
func New(flags ...Flag) *OptionSet {
	set := make([]Flag, 0, len(flags))
	for _, f := range flagOrder {
		if slices.Contains(flags, f) {
			set = append(set, f)
		}
	}
	return &OptionSet{flags: set}
}

// ParseArgs maps command-line style arguments to an OptionSet. A single "--bare" argument
// yields {Bare}; any other input yields an empty set.
func ParseArgs(args ...string) *OptionSet {
	if len(args) == 1 && args[0] == bareArg {
		return New(Bare)
	}
	return New()
}

// Contains reports whether f is a member of the set.
func (o *OptionSet) Contains(f Flag) bool {
	if o == nil {
		return false
	}
	return slices.Contains(o.flags, f)
}

// Flags returns a copy of the members in enumeration order.
func (o *OptionSet) Flags() []Flag {
	if o == nil {
		return nil
	}
	return slices.Clone(o.flags)
}

// Len returns the number of members.
func (o *OptionSet) Len() int {
	if o == nil {
		return 0
	}
	return len(o.flags)
}

// With returns a new set containing the members of o plus flags.
func (o *OptionSet) With(flags ...Flag) *OptionSet {
	return New(append(o.Flags(), flags...)...)
}

// Serialize renders the members understood by the embedded compiler as a JavaScript
// object literal, e.g. "{bare: true}". Absent flags are omitted, so the empty set
// renders as "{}". The output only depends on membership.
func (o *OptionSet) Serialize() string {
	var b strings.Builder
	b.WriteByte('{')
	n := 0
	for _, f := range o.Flags() {
		key := f.compilerKey()
		if key == "" {
			continue
		}
		if n > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString(": true")
		n++
	}
	b.WriteByte('}')
	return b.String()
}

func (o *OptionSet) String() string {
	names := make([]string, 0, o.Len())
	for _, f := range o.Flags() {
		names = append(names, f.String())
	}
	return "OptionSet{" + strings.Join(names, ", ") + "}"
}
