// Package sequencer drives a simulation clock through an ordered list of
// phases and collects check results.
//
// A phase list is plain data. Three kinds exist:
//
//   - Reset: hold reset asserted for steps [0, DeassertAt), release it, keep
//     stepping until Steps, then optionally check the output. DeassertAt is
//     at least 1 so the first rising edge always sees reset.
//   - Propagate: apply one input vector, step Steps times (a whole number of
//     clock cycles), then check the output against the expected value.
//   - Idle: step with no input change and no check.
//
// Structural problems in the list are reported by New as *MisuseError before
// any simulation happens. A failed check never stops the sequence; a model or
// tracer fault aborts it and no results are returned.
package sequencer
