// Package build provides the site generation pipeline for hyde.
//
// BuildService loads the run's datasets, walks the site root, renders every
// text file through the front-matter aware template environment, copies
// binary assets verbatim and writes everything to a destination. Both the CLI
// and tests route through it.
//
// Per-file failures are wrapped in classified errors carrying the template
// name and failure kind, so the CLI can map them to exit codes.
package build
