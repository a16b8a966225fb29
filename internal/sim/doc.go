// Package sim owns the simulated time base of a testbench run.
//
// A Clock is a simulation session: it exclusively owns one model under test
// and, optionally, one trace writer for the lifetime of a run. Open acquires
// both; Close releases both and must be deferred by the caller so release
// happens on every exit path.
//
// # Stepping
//
// Step is the only way simulated time advances. Each call:
//
//  1. toggles the clock signal and drives it into the model
//  2. calls Model.Eval for the current input state
//  3. calls Tracer.Capture at the current time, if tracing is enabled
//  4. advances the simulated time by one
//
// The clock starts low, so the first Step is a rising edge and every even
// time value is a cycle boundary. A full clock cycle is two steps.
//
// # Settle tracking
//
// SetInput and SetReset mark the clock unsettled; two further steps (one
// full cycle) settle it again. Readers that need the output to reflect a
// previously applied input check Settled before ReadOutput.
package sim
