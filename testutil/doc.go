// Package testutil provides fixtures for feeddown tests.
//
// This package is intended for use in tests only. It writes synthetic
// analysis output (RDT tables, twiss models, simulation tables) and generates
// readings that follow a known knob response.
//
//	rng := testutil.NewRNG(42)
//	names := testutil.MonitorNames(1, 12)
//	dir := testutil.WriteMeasurement(t, root, "ref", "f1200", "x", 1, readings)
package testutil
