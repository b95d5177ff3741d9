// Package logs tails the starreview log file for the CLI.
//
// Tail streams with bounded memory, treats a negative offset as "last N
// lines", and polls for new lines in follow mode until the caller's context
// ends. MatchVideo and MatchAny narrow output to one video's run or to
// event types such as stage_start.
package logs
