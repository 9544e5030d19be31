package core

import "time"

// TestResult is the outcome of running one registered test. Literal tests
// produce a LiteralResult; linked tests produce a LinkedResult aggregating
// every record in their definition files.
type TestResult interface {
	isTestResult()
}

// LiteralResult is the outcome of one inline input/output pair.
type LiteralResult struct {
	Index    int
	Passed   bool
	Elapsed  time.Duration
	Input    string
	Expected string
	Output   string
}

func (LiteralResult) isTestResult() {}

// LinkedResult aggregates the sub-test records of one linked test.
type LinkedResult struct {
	Index   int
	Passed  int
	Total   int
	Records []SubResult
}

func (LinkedResult) isTestResult() {}

// Failures counts the sub-tests that did not pass.
func (r LinkedResult) Failures() int {
	return r.Total - r.Passed
}

// SubResult is the outcome of one record inside a linked test.
type SubResult struct {
	Index    int
	Passed   bool
	Elapsed  time.Duration
	Input    string
	Expected string
	Output   string
}
