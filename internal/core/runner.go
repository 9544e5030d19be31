package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"erunner/internal/cache"
	"erunner/internal/selector"
	"erunner/internal/testfile"
)

// ErrBinaryMissing is returned when a build reports success but the expected
// binary still does not exist. Retrying the build would loop forever, so the
// runner gives up after one rebuild.
var ErrBinaryMissing = errors.New("build succeeded but binary is missing")

// Runner decides when a source file needs recompilation and runs its tests
// against the cached binary.
type Runner struct {
	Store    *cache.Store
	Compiler Compiler
	Executor *Executor
	Log      *zap.Logger
}

// NewRunner wires a Runner from its collaborators. A nil logger disables
// diagnostics.
func NewRunner(store *cache.Store, compiler Compiler, executor *Executor, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Store: store, Compiler: compiler, Executor: executor, Log: log}
}

// EnsureEntry brings the cache entry for sourcePath up to date, rebuilding
// the binary when needed, and returns the fresh entry.
//
// The decision is driven by the stored fingerprint: no entry means first
// registration (build, start with no tests); a fingerprint mismatch or the
// pending-recompilation sentinel means rebuild while keeping the registered
// tests; a match reuses the existing binary. force rebuilds unconditionally.
func (r *Runner) EnsureEntry(ctx context.Context, sourcePath string, force bool) (cache.FileCache, error) {
	reg, err := r.Store.Config()
	if err != nil {
		return cache.FileCache{}, err
	}

	hash, err := FingerprintFile(sourcePath)
	if err != nil {
		return cache.FileCache{}, fmt.Errorf("hashing %s: %w", sourcePath, err)
	}

	filename := filepath.Base(sourcePath)
	entry, err := r.Store.Entry(filename)
	if err != nil {
		return cache.FileCache{}, err
	}

	fresh := cache.FileCache{SourceHash: hash}
	switch {
	case entry == nil:
		r.Log.Debug("first registration", zap.String("file", filename))

	case !force && entry.SourceHash == hash:
		r.Log.Debug("binary up to date", zap.String("file", filename))
		return *entry, nil

	default:
		// Covers force, a content change and the sentinel alike. The
		// sentinel can never equal a real fingerprint.
		r.Log.Debug("rebuilding",
			zap.String("file", filename),
			zap.Bool("forced", force),
			zap.Bool("pending", entry.SourceHash == cache.PendingRecompilation))
		fresh.Tests = entry.Tests
	}

	if err := r.Compiler.Compile(ctx, sourcePath, reg.BinaryDir); err != nil {
		return cache.FileCache{}, err
	}
	if err := r.Store.PutEntry(filename, fresh); err != nil {
		return cache.FileCache{}, err
	}
	return fresh, nil
}

// markPending writes the recompilation sentinel for sourcePath so the next
// decision pass rebuilds even if the run is interrupted here.
func (r *Runner) markPending(sourcePath string) error {
	filename := filepath.Base(sourcePath)
	entry, err := r.Store.Entry(filename)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = &cache.FileCache{}
	}
	entry.SourceHash = cache.PendingRecompilation
	return r.Store.PutEntry(filename, *entry)
}

// execute runs the source's binary, rebuilding at most once when the binary
// has disappeared between the decision pass and execution.
func (r *Runner) execute(ctx context.Context, sourcePath string, stdin Stdin) (Outcome, error) {
	reg, err := r.Store.Config()
	if err != nil {
		return nil, err
	}
	binary := BinaryPath(reg.BinaryDir, sourcePath)

	rebuilt := false
	for {
		outcome, err := r.Executor.Run(ctx, binary, stdin)
		if err != nil {
			return nil, err
		}
		if _, missing := outcome.(NeedsRecompilation); !missing {
			return outcome, nil
		}
		if rebuilt {
			return nil, fmt.Errorf("%w: %s", ErrBinaryMissing, binary)
		}

		r.Log.Info("binary disappeared, rebuilding once",
			zap.String("binary", binary))
		if err := r.markPending(sourcePath); err != nil {
			return nil, err
		}
		if _, err := r.EnsureEntry(ctx, sourcePath, false); err != nil {
			return nil, err
		}
		rebuilt = true
	}
}

// RunInteractive compiles sourcePath if needed and runs its binary with
// inherited stdio.
func (r *Runner) RunInteractive(ctx context.Context, sourcePath string, force bool) (Outcome, error) {
	if _, err := r.EnsureEntry(ctx, sourcePath, force); err != nil {
		return nil, err
	}
	return r.execute(ctx, sourcePath, InheritStdin{})
}

// RunTests compiles sourcePath if needed and runs its registered tests.
// A nil ranges slice runs everything; otherwise only the selected tests
// (and, for linked tests, only the selected sub-tests) run.
func (r *Runner) RunTests(ctx context.Context, sourcePath string, ranges []selector.TestsRange) ([]TestResult, error) {
	entry, err := r.EnsureEntry(ctx, sourcePath, false)
	if err != nil {
		return nil, err
	}

	var results []TestResult
	for i, test := range entry.Tests {
		index := i + 1
		subs, selected := selectMain(ranges, index)
		if !selected {
			continue
		}

		switch t := test.(type) {
		case cache.StringTest:
			res, err := r.runLiteral(ctx, sourcePath, index, t)
			if err != nil {
				return results, err
			}
			results = append(results, res)

		case cache.RefTest:
			res, err := r.runLinked(ctx, sourcePath, index, t, subs)
			if err != nil {
				return results, err
			}
			results = append(results, res)

		default:
			return results, fmt.Errorf("test %d: unknown test kind %T", index, test)
		}
	}
	return results, nil
}

// runLiteral runs one inline pair. The stored expected output is compared
// to the captured stdout byte for byte; only linked tests get the relaxed
// trimmed comparison.
func (r *Runner) runLiteral(ctx context.Context, sourcePath string, index int, t cache.StringTest) (TestResult, error) {
	outcome, err := r.execute(ctx, sourcePath, CustomStdin{Input: t.Input})
	if err != nil {
		return nil, err
	}

	res := LiteralResult{
		Index:    index,
		Input:    t.Input,
		Expected: t.ExpectedOutput,
	}
	switch o := outcome.(type) {
	case Successful:
		res.Output = o.Output
		res.Elapsed = o.Elapsed
		res.Passed = o.Output == t.ExpectedOutput
	case Failed:
		res.Output = o.Reason
	default:
		return nil, fmt.Errorf("test %d: unexpected outcome %T", index, outcome)
	}
	return res, nil
}

// runLinked streams the records of a linked test and runs the selected
// sub-tests. Records outside the sub-selection are still consumed, so
// sub-test numbering stays aligned with the file contents.
func (r *Runner) runLinked(ctx context.Context, sourcePath string, index int, t cache.RefTest, subs []selector.SubRange) (TestResult, error) {
	source, closeAll, err := testfile.OpenRecords(t.InputFile, t.ExpectedOutputFile)
	if err != nil {
		return nil, err
	}
	defer closeAll()

	res := LinkedResult{Index: index}
	sub := 0
	for source.Scan() {
		sub++
		if !selectSub(subs, sub) {
			continue
		}
		record := source.Test()

		outcome, err := r.execute(ctx, sourcePath, CustomStdin{Input: record.Input})
		if err != nil {
			return nil, err
		}

		sr := SubResult{
			Index:    sub,
			Input:    record.Input,
			Expected: record.ExpectedOutput,
		}
		switch o := outcome.(type) {
		case Successful:
			sr.Output = o.Output
			sr.Elapsed = o.Elapsed
			sr.Passed = trimOutput(o.Output) == trimOutput(record.ExpectedOutput)
		case Failed:
			sr.Output = o.Reason
		default:
			return nil, fmt.Errorf("test %d.%d: unexpected outcome %T", index, sub, outcome)
		}

		res.Records = append(res.Records, sr)
		res.Total++
		if sr.Passed {
			res.Passed++
		}
	}
	if err := source.Err(); err != nil {
		return nil, fmt.Errorf("test %d: %w", index, err)
	}
	return res, nil
}

// openLinked builds the record stream for a linked test: a single paired
// file, or an input file merged with an expected-output file. Merged sides
// are parsed in standalone mode so each block is one record.
func openLinked(t cache.RefTest) (testfile.Source, func(), error) {
	inputs, err := testfile.Open(t.InputFile)
	if err != nil {
		return nil, nil, err
	}
	if t.ExpectedOutputFile == "" {
		return inputs, func() { inputs.Close() }, nil
	}

	inputs.SetFlag(testfile.FlagStandalone, true)
	outputs, err := testfile.Open(t.ExpectedOutputFile)
	if err != nil {
		inputs.Close()
		return nil, nil, err
	}
	outputs.SetFlag(testfile.FlagStandalone, true)

	closeAll := func() {
		inputs.Close()
		outputs.Close()
	}
	return testfile.Merge(inputs, outputs), closeAll, nil
}

// selectMain reports whether main test index is selected and returns the
// sub-ranges constraining it. A nil ranges slice selects everything; a
// selected main with no sub-range runs all its sub-tests.
func selectMain(ranges []selector.TestsRange, index int) ([]selector.SubRange, bool) {
	if ranges == nil {
		return nil, true
	}
	var subs []selector.SubRange
	selected := false
	for _, r := range ranges {
		if r.Main != index {
			continue
		}
		selected = true
		if r.Sub == nil {
			// Whole-test selection wins over any sub-range.
			return nil, true
		}
		subs = append(subs, *r.Sub)
	}
	return subs, selected
}

// selectSub reports whether sub-test index sub falls inside any of the
// ranges. An empty slice means no constraint.
func selectSub(subs []selector.SubRange, sub int) bool {
	if len(subs) == 0 {
		return true
	}
	for _, s := range subs {
		if s.Contains(sub) {
			return true
		}
	}
	return false
}
