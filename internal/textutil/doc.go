// Package textutil compares short phrases by token overlap.
//
// Practice titles returned by the language models drift from the catalog
// wording ("Clear instructions" for "Clear Instruction Delivery"). Fingerprints
// are term-frequency vectors over lowercase tokens of three or more
// characters; BestMatch weights them by inverse document frequency across
// the candidate set before taking cosine similarity.
package textutil
