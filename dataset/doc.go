// Package dataset builds reference-relative RDT datasets from a knob scan.
//
// Build reads one reference measurement and N scan measurements of one beam,
// rejects outlier rows, tags every reading with the knob value resolved for
// its source, and keeps only monitors seen exactly once in the reference and
// once in every requested scan. For those monitors it stores the differences
// scan minus reference, ordered by knob delta. Fit then fits the quadratic
// knob response of every monitor; Encode and Decode persist datasets.
//
// Recoverable conditions (an unresolvable scan knob, a missing scan file, a
// monitor that fails to fit) are reported in a Report or failure map and
// logged; everything else aborts the stage with an error.
package dataset
