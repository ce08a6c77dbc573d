// Package report implements the error taxonomy and diagnostic rendering
// shared by every pipeline stage.
package report

import (
	"fmt"

	"github.com/sflynlang/sflync/internal/position"
)

// Kind is the closed set of error categories a diagnostic can belong to.
type Kind int

const (
	// ExpectArguments: wrong arity at a call. Payload: Expected, Got.
	ExpectArguments Kind = iota
	// ExpectToken: the parser saw a different token than it required.
	// Payload: Expected, Got (strings).
	ExpectToken
	// ExpectType: a type-checking mismatch. Payload: Expected, Got (strings).
	ExpectType
	// Lexical: a scanning or dead-code diagnostic. Payload: Message.
	Lexical
	// NameInUse: redefinition in the current scope chain. Payload: Name,
	// and a secondary annotation at the prior declaration.
	NameInUse
	// UnknownIdentifier: a lookup failed. Payload: Name.
	UnknownIdentifier
	// UnknownPosition: the parser ran past the end of the token stream.
	UnknownPosition
	// UnknownToken: an unclassifiable token at this position.
	UnknownToken
)

var kindTitles = map[Kind]string{
	ExpectArguments:   "wrong number of arguments",
	ExpectToken:       "unexpected token",
	ExpectType:        "type mismatch",
	Lexical:           "lexical error",
	NameInUse:         "name already in use",
	UnknownIdentifier: "unknown identifier",
	UnknownPosition:   "unknown position",
	UnknownToken:      "unknown token",
}

// Title is the short category header shown above a diagnostic.
func (k Kind) Title() string {
	if t, ok := kindTitles[k]; ok {
		return t
	}
	return "error"
}

// Annotation is a labeled source span attached to a Diagnostic. The first
// Annotation added to a Diagnostic is its primary span.
type Annotation struct {
	Position position.Position
	Message  string
	Primary  bool
}

// Diagnostic binds an error Kind to one or more source annotations and a
// human-readable message. It implements the error interface so it can be
// returned and wrapped like any other Go error.
type Diagnostic struct {
	Kind        Kind
	Message     string
	Annotations []Annotation

	// Kind-specific structured payload, populated by the constructors below.
	Expected, Got string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind.Title(), d.Message)
}

// Primary returns the Diagnostic's primary annotation, or the zero value if
// it has none.
func (d *Diagnostic) Primary() Annotation {
	for _, a := range d.Annotations {
		if a.Primary {
			return a
		}
	}
	if len(d.Annotations) > 0 {
		return d.Annotations[0]
	}
	return Annotation{}
}

func newDiagnostic(kind Kind, pos position.Position, message string) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: message,
		Annotations: []Annotation{
			{Position: pos, Message: message, Primary: true},
		},
	}
}

// ArityError reports a call with too few or too many arguments.
func ArityError(pos position.Position, expected, got int) *Diagnostic {
	msg := fmt.Sprintf("expected %d argument(s), got %d", expected, got)
	d := newDiagnostic(ExpectArguments, pos, msg)
	d.Expected = fmt.Sprint(expected)
	d.Got = fmt.Sprint(got)
	return d
}

// TokenError reports a token the parser didn't expect.
func TokenError(pos position.Position, expected, got string) *Diagnostic {
	msg := fmt.Sprintf("expected %s, got %s", expected, got)
	d := newDiagnostic(ExpectToken, pos, msg)
	d.Expected, d.Got = expected, got
	return d
}

// TypeError reports a type-checking mismatch.
func TypeError(pos position.Position, expected, got string) *Diagnostic {
	msg := fmt.Sprintf("expected %s, got %s", expected, got)
	d := newDiagnostic(ExpectType, pos, msg)
	d.Expected, d.Got = expected, got
	return d
}

// LexError reports a scanning or dead-code diagnostic.
func LexError(pos position.Position, message string) *Diagnostic {
	return newDiagnostic(Lexical, pos, message)
}

// NameInUseError reports a redefinition, with a secondary annotation
// pointing at the prior declaration.
func NameInUseError(pos position.Position, name string, priorPos position.Position) *Diagnostic {
	d := newDiagnostic(NameInUse, pos, fmt.Sprintf("%q is already defined in this scope", name))
	d.Annotations = append(d.Annotations, Annotation{
		Position: priorPos,
		Message:  "previously defined here",
	})
	return d
}

// UnknownIdentifierError reports a failed lookup.
func UnknownIdentifierError(pos position.Position, name string) *Diagnostic {
	return newDiagnostic(UnknownIdentifier, pos, fmt.Sprintf("unknown identifier %q", name))
}

// UnknownPositionError reports the parser running past the end of input.
func UnknownPositionError(pos position.Position) *Diagnostic {
	return newDiagnostic(UnknownPosition, pos, "ran past the end of the token stream")
}

// UnknownTokenError reports an unclassifiable leading token.
func UnknownTokenError(pos position.Position, lexeme string) *Diagnostic {
	return newDiagnostic(UnknownToken, pos, fmt.Sprintf("unknown token %q", lexeme))
}
