package testfile

// Merged pairs two independent record streams: one file providing inputs,
// one providing expected outputs. Both sides are consumed in input-capture
// mode, so the Nth record's Input field of each stream forms the Nth pair.
//
// The merged stream stops at the first exhaustion of either side; a trailing
// unpaired record is dropped. Either side's parse error ends the stream and
// is surfaced through Err.
type Merged struct {
	inputs  Source
	outputs Source

	test SimpleTest
	err  error
}

// Merge combines an input stream and an expected-output stream.
func Merge(inputs, outputs Source) *Merged {
	return &Merged{inputs: inputs, outputs: outputs}
}

// Scan advances both sides by one record.
func (m *Merged) Scan() bool {
	if m.err != nil {
		return false
	}
	if !m.inputs.Scan() {
		m.err = m.inputs.Err()
		return false
	}
	if !m.outputs.Scan() {
		m.err = m.outputs.Err()
		return false
	}
	m.test = SimpleTest{
		Input:          m.inputs.Test().Input,
		ExpectedOutput: m.outputs.Test().Input,
	}
	return true
}

// Test returns the pair produced by the last successful Scan.
func (m *Merged) Test() SimpleTest { return m.test }

// Err returns the first error from either side, nil on clean exhaustion.
func (m *Merged) Err() error { return m.err }

// OpenRecords opens the record stream for a definition file, optionally
// merged with a separate expected-output file. With an output file both
// sides are forced into standalone mode, so every top-level block is one
// record. The returned closer releases the underlying files.
func OpenRecords(inputPath, outputPath string) (Source, func(), error) {
	inputs, err := Open(inputPath)
	if err != nil {
		return nil, nil, err
	}
	if outputPath == "" {
		return inputs, func() { inputs.Close() }, nil
	}

	inputs.SetFlag(FlagStandalone, true)
	outputs, err := Open(outputPath)
	if err != nil {
		inputs.Close()
		return nil, nil, err
	}
	outputs.SetFlag(FlagStandalone, true)

	closeAll := func() {
		inputs.Close()
		outputs.Close()
	}
	return Merge(inputs, outputs), closeAll, nil
}
