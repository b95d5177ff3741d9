// Package workflow runs analysis for stored videos.
//
// Runner guards each video with a file lock and the store's processing
// status, resolves the mode and catalog, drives the pipeline with the store
// as its progress sink, and commits results in one transaction before the
// pipeline reports completion. BuildDependencies wires the media tools and
// hosted services from configuration.
package workflow
