// Package harness runs testbench scenarios against behavioural models.
//
// A scenario names a model, a reset window, a stimulus set and an optional
// idle window. The harness turns it into a phase list, opens a simulation
// session, drives it with the sequencer, and reports every check as it is
// made.
//
// # Scenario Format
//
// Scenarios are YAML (.yaml, .yml) or CUE (.cue) files with the same fields:
//
//	name: passthrough
//	description: Registered pass-through after reset
//	model: register
//	width: 8
//	reset:
//	  steps: 10
//	  deassert_at: 5
//	  expect: 0x00
//	stimulus:
//	  - input: 0xAA
//	    expect: 0xAA
//	  - input: 0x55
//	    expect_expr: "data"
//	idle:
//	  steps: 20
//
// Vectors accept decimal, 0x hex, 0o octal and 0b binary literals.
// expect_expr is a Starlark expression evaluated once at load time with
// data (the item input) and mask (the port mask) predeclared.
//
// # Reporting
//
// Each check is printed as soon as it is made:
//
//	PASS reset: expected 0x00, observed 0x00
//	FAIL data[1]: expected 0x55, observed 0xAA
//	Summary: 5 checks, 4 passed, 1 failed (time 38)
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/passthrough.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario, harness.Options{Out: os.Stdout})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Exit(result.ExitCode())
package harness
