package rscript

import "fmt"

// FailureKind distinguishes a script that failed structural validation from
// any other parse failure.
type FailureKind int

const (
	// FailureMalformed means the file matched the suffix but its description
	// is not a valid script (bad header line, schema violation).
	FailureMalformed FailureKind = iota + 1
	// FailureUnexpected covers everything else (I/O errors, parser panics).
	FailureUnexpected
)

func (k FailureKind) String() string {
	switch k {
	case FailureMalformed:
		return "malformed"
	case FailureUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure describes why a script could not be turned into an Algorithm.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// Result is the outcome of parsing one script: exactly one of Algorithm and
// Failure is set.
type Result struct {
	Algorithm *Algorithm
	Failure   *Failure
}

// Parsed wraps a successfully parsed algorithm.
func Parsed(a *Algorithm) Result {
	return Result{Algorithm: a}
}

// Malformed returns a malformed-script failure carrying msg.
func Malformed(msg string) Result {
	return Result{Failure: &Failure{Kind: FailureMalformed, Message: msg}}
}

// Unexpected returns a generic failure wrapping err.
func Unexpected(err error) Result {
	return Result{Failure: &Failure{Kind: FailureUnexpected, Message: err.Error(), Err: err}}
}

// OK reports whether the result carries an algorithm.
func (r Result) OK() bool { return r.Failure == nil && r.Algorithm != nil }
