// Package selector evaluates test-selection expressions.
//
// An expression list is comma separated; each piece is one of:
//
//	N        all sub-tests of main test N (or the whole test if literal)
//	N.M      sub-test M of main test N
//	A[.a]-B[.b]  an inclusive range, possibly spanning main tests
//
// A missing sub-start defaults to 1; a missing sub-end means "to the end of
// that main test's sub-tests".
package selector

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRange marks a structurally malformed expression.
	ErrInvalidRange = errors.New("invalid range format")

	// ErrInvalidNumber marks a non-numeric index segment.
	ErrInvalidNumber = errors.New("invalid number")
)

// EvalError wraps an evaluation failure with the offending token.
type EvalError struct {
	Kind  error
	Token string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %q", e.Kind.Error(), e.Token)
}

func (e *EvalError) Unwrap() error { return e.Kind }

// SubMax is the open upper bound of a sub-range: callers treat it as "to the
// end of the sub-tests of that main test".
const SubMax = math.MaxInt

// SubRange is an inclusive range of 1-based sub-test indices.
type SubRange struct {
	Start int
	End   int
}

// Contains reports whether the 1-based index i falls inside the range.
func (r SubRange) Contains(i int) bool {
	return i >= r.Start && i <= r.End
}

// TestsRange selects one main test and, optionally, an inclusive sub-range
// within it. A nil Sub means every sub-test (or the whole literal test).
type TestsRange struct {
	Main int
	Sub  *SubRange
}

// Evaluate splits the expression list on commas, evaluates each piece in
// order and concatenates the results, failing fast on the first malformed
// piece.
func Evaluate(expressions string) ([]TestsRange, error) {
	var out []TestsRange
	for _, expr := range strings.Split(expressions, ",") {
		ranges, err := processExpression(strings.TrimSpace(expr))
		if err != nil {
			return nil, err
		}
		out = append(out, ranges...)
	}
	return out, nil
}

func processExpression(expr string) ([]TestsRange, error) {
	switch {
	case strings.Contains(expr, "-"):
		return processRange(expr)
	case strings.Contains(expr, "."):
		return processSubTest(expr)
	default:
		main, err := parseIndex(expr)
		if err != nil {
			return nil, err
		}
		return []TestsRange{{Main: main}}, nil
	}
}

// processRange handles "A[.a]-B[.b]". A range within one main test yields a
// single selector; a range spanning main tests expands to the open tail of
// the first, every whole main test in between, and the bounded head of the
// last.
func processRange(expr string) ([]TestsRange, error) {
	parts := strings.Split(expr, "-")
	if len(parts) != 2 {
		return nil, &EvalError{Kind: ErrInvalidRange, Token: expr}
	}

	left := strings.Split(parts[0], ".")
	right := strings.Split(parts[1], ".")

	mainStart, err := parseIndex(left[0])
	if err != nil {
		return nil, err
	}
	mainEnd, err := parseIndex(right[0])
	if err != nil {
		return nil, err
	}

	subStart := 1
	if len(left) == 2 {
		if subStart, err = parseIndex(left[1]); err != nil {
			return nil, err
		}
	}
	subEnd := SubMax
	if len(right) == 2 {
		if subEnd, err = parseIndex(right[1]); err != nil {
			return nil, err
		}
	}

	if mainStart == mainEnd {
		return []TestsRange{
			{Main: mainStart, Sub: &SubRange{Start: subStart, End: subEnd}},
		}, nil
	}

	out := []TestsRange{
		{Main: mainStart, Sub: &SubRange{Start: subStart, End: SubMax}},
	}
	for main := mainStart + 1; main < mainEnd; main++ {
		out = append(out, TestsRange{Main: main})
	}
	out = append(out, TestsRange{Main: mainEnd, Sub: &SubRange{Start: 1, End: subEnd}})
	return out, nil
}

// processSubTest handles "N.M".
func processSubTest(expr string) ([]TestsRange, error) {
	parts := strings.Split(expr, ".")
	if len(parts) != 2 {
		return nil, &EvalError{Kind: ErrInvalidRange, Token: expr}
	}

	main, err := parseIndex(parts[0])
	if err != nil {
		return nil, err
	}
	sub, err := parseIndex(parts[1])
	if err != nil {
		return nil, err
	}
	return []TestsRange{
		{Main: main, Sub: &SubRange{Start: sub, End: sub}},
	}, nil
}

func parseIndex(token string) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, &EvalError{Kind: ErrInvalidNumber, Token: token}
	}
	return n, nil
}
