// Package types defines the compile-time Data Type union and its
// structural equality rules.
package types

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// Tag identifies which Data Type variant a Type value holds.
type Tag int

const (
	Boolean Tag = iota
	Number
	String
	Void
	Unknown
	Identifier
	Array
	Function
	HashMap
	Option
)

// Type is the tagged union described in spec.md §3. Only the fields
// relevant to Tag are meaningful; the rest are zero.
type Type struct {
	Tag Tag

	Name string // Identifier

	Elem *Type // Array, Option

	Params []Type // Function
	Return *Type  // Function

	Fields map[string]Type // HashMap
}

var (
	TBoolean = Type{Tag: Boolean}
	TNumber  = Type{Tag: Number}
	TString  = Type{Tag: String}
	TVoid    = Type{Tag: Void}
	TUnknown = Type{Tag: Unknown}
)

// NewIdentifier builds an Identifier(name) type.
func NewIdentifier(name string) Type { return Type{Tag: Identifier, Name: name} }

// NewArray builds an Array(elem) type.
func NewArray(elem Type) Type { return Type{Tag: Array, Elem: &elem} }

// NewOption builds an Option(inner) type.
func NewOption(inner Type) Type { return Type{Tag: Option, Elem: &inner} }

// NewFunction builds a Function(params, ret) type.
func NewFunction(params []Type, ret Type) Type {
	return Type{Tag: Function, Params: params, Return: &ret}
}

// NewHashMap builds a HashMap(fields) type.
func NewHashMap(fields map[string]Type) Type {
	return Type{Tag: HashMap, Fields: fields}
}

// Equal reports structural equivalence, per spec.md §3: Function types are
// equal iff arities match and parameters plus return type are pairwise
// equal; HashMap types are equal iff key sets match and corresponding
// value types are equal.
func (t Type) Equal(o Type) bool {
	if t.Tag != o.Tag {
		return false
	}
	switch t.Tag {
	case Identifier:
		return t.Name == o.Name
	case Array, Option:
		return t.Elem.Equal(*o.Elem)
	case Function:
		if len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return t.Return.Equal(*o.Return)
	case HashMap:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		// golang.org/x/exp/maps collects the key set; sorting on top of it
		// makes the comparison (and any diagnostic built from it)
		// independent of Go's randomized map iteration order.
		keys := maps.Keys(t.Fields)
		sort.Strings(keys)
		for _, k := range keys {
			ov, ok := o.Fields[k]
			if !ok || !t.Fields[k].Equal(ov) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the type the way diagnostics and the `toString`-style
// debug dumps refer to it.
func (t Type) String() string {
	switch t.Tag {
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Void:
		return "void"
	case Unknown:
		return "unknown"
	case Identifier:
		return t.Name
	case Array:
		return t.Elem.String() + "[]"
	case Option:
		return t.Elem.String() + "?"
	case Function:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.String()
		}
		return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), t.Return.String())
	case HashMap:
		keys := maps.Keys(t.Fields)
		sort.Strings(keys)
		fields := make([]string, len(keys))
		for i, k := range keys {
			fields[i] = fmt.Sprintf("%s: %s", k, t.Fields[k].String())
		}
		return "{ " + strings.Join(fields, ", ") + " }"
	default:
		return "?"
	}
}
