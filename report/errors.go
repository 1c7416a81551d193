package report

import (
	"errors"
	"fmt"
	"os"
)

// ErrorKind classifies a compile error.  Every fatal condition the generator
// can detect has its own kind so callers and tests can tell them apart
// without matching on message text.
type ErrorKind int

// Enumeration of error kinds.
const (
	// Definition errors.
	DuplicateType ErrorKind = iota
	AggregateRedefined
	DuplicateBinding
	RedefinedFunction
	SignatureMismatch

	// Resolution errors.
	UnknownType
	UnknownIdentifier
	NoSuchField
	UndefinedLabel

	// Type errors.
	InvalidCast
	BitwiseOnInteger
	NotAddressable
	NotAssignable
	NotDereferenceable
	NotCallable
	NotAStruct
	ArityMismatch
	NotBoolable
	InvalidIndex
	InvalidOperands
	InvalidReturn
	NotConstant
	BreakOutsideLoop

	// Front end errors.
	SyntaxError

	// I/O and toolchain errors.
	SourceUnreadable
	ToolchainFailed
	OutputFailed

	// Backend errors.
	VerifyFailed
)

var kindNames = map[ErrorKind]string{
	DuplicateType:      "duplicate type",
	AggregateRedefined: "aggregate redefined",
	DuplicateBinding:   "duplicate binding",
	RedefinedFunction:  "redefined function",
	SignatureMismatch:  "signature mismatch",
	UnknownType:        "unknown type",
	UnknownIdentifier:  "unknown identifier",
	NoSuchField:        "no such field",
	UndefinedLabel:     "undefined label",
	InvalidCast:        "invalid cast",
	BitwiseOnInteger:   "bitwise operation on non-integer",
	NotAddressable:     "not addressable",
	NotAssignable:      "not assignable",
	NotDereferenceable: "not dereferenceable",
	NotCallable:        "not callable",
	NotAStruct:         "not a struct",
	ArityMismatch:      "arity mismatch",
	NotBoolable:        "not boolable",
	InvalidIndex:       "invalid index",
	InvalidOperands:    "invalid operands",
	InvalidReturn:      "invalid return",
	NotConstant:        "not constant",
	BreakOutsideLoop:   "break outside loop",
	SyntaxError:        "syntax error",
	SourceUnreadable:   "source unreadable",
	ToolchainFailed:    "toolchain failed",
	OutputFailed:       "output failed",
	VerifyFailed:       "verification failed",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("error kind %d", int(k))
}

// Category returns the broad class of the error kind as displayed in error
// banners: "Definition", "Resolution", "Type", "Syntax", "I/O" or "Backend".
func (k ErrorKind) Category() string {
	switch {
	case k <= SignatureMismatch:
		return "Definition"
	case k <= UndefinedLabel:
		return "Resolution"
	case k <= BreakOutsideLoop:
		return "Type"
	case k == SyntaxError:
		return "Syntax"
	case k <= OutputFailed:
		return "I/O"
	default:
		return "Backend"
	}
}

// -----------------------------------------------------------------------------

// CompileError is a fatal compilation error.  It carries the kind of the
// error and a human readable message naming the offending construct.
type CompileError struct {
	Kind    ErrorKind
	Message string
}

func (ce *CompileError) Error() string {
	return ce.Message
}

// Raise creates a new compile error.  Inside the generator it is thrown with
// `panic(report.Raise(...))` and caught by Catch at the exported boundary.
func Raise(kind ErrorKind, msg string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(msg, args...)}
}

// KindOf returns the kind of a compile error.  The second value is false if
// err is not (and does not wrap) a compile error.
func KindOf(err error) (ErrorKind, bool) {
	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind, true
	}

	return 0, false
}

// Catch recovers a compile error thrown by `panic` and stores it in errp.
// Any other panic is not a compile error and keeps unwinding.
// NB: This function must ALWAYS be deferred.
func Catch(errp *error) {
	if x := recover(); x != nil {
		if cerr, ok := x.(*CompileError); ok {
			*errp = cerr
			return
		}

		panic(x)
	}
}

// -----------------------------------------------------------------------------

// ReportCompileError reports a compilation error in the source file at
// reprPath.  The reporter records the error even when nothing is displayed.
func ReportCompileError(reprPath string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel > LogLevelSilent {
		displayEndPhase(false)

		if cerr, ok := err.(*CompileError); ok {
			displayCompileError(reprPath, cerr.Kind.Category(), cerr.Message)
		} else {
			displayStdError(reprPath, err)
		}
	}
}

// ReportWarning buffers a warning to be displayed when compilation finishes.
func ReportWarning(msg string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.warnings = append(rep.warnings, fmt.Sprintf(msg, args...))
}

// ReportICE reports an internal compiler error.  These are errors that
// specifically result for a bug or unexpected condition occurring with the
// compiler: they are not intended to ever happen.  These errors are always
// displayed regardless of log level.
func ReportICE(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	displayEndPhase(false)
	displayICE(fmt.Sprintf(message, args...))

	os.Exit(-1)
}

// ReportFatal reports a fatal error.  These are errors that should cause all
// compilation to stop immediately: unusable configuration, missing tools, and
// the like.
func ReportFatal(message string, args ...interface{}) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel > LogLevelSilent {
		displayEndPhase(false)
		displayFatal(fmt.Sprintf(message, args...))
	}

	os.Exit(1)
}
