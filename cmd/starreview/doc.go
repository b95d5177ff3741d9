// Package main hosts the starreview CLI entrypoint and command graph.
//
// The Cobra command tree registers session videos, imports the practice
// catalog, runs analyses (optionally several at once), and prints progress,
// annotations, and transcripts from the record store. It centralizes
// configuration resolution, .env loading, and logging setup so subcommands
// only translate flags into calls on the internal packages.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through a command or flag here.
package main
