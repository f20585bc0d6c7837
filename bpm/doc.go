// Package bpm parses beam position monitor names and classifies monitors for
// ring-wide statistics.
//
// A monitor name has the form FAMILY.<index><side><ip>.B<beam>, e.g.
// "BPM.13L2.B1": family "BPM", index 13 left of IP2, beam 1. Monitors with an
// index below ArcIndex sit in the interaction regions and are excluded from
// ring averages, as are monitors on the per-beam deny list.
package bpm
