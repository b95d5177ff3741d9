// Package analysis runs the two remote analysis passes over a session.
//
// Transcript sends the full transcript and the category's criteria to a
// language model and expects {"annotations": [...]}. Visual keeps only the
// criteria that can be seen in still frames, subsamples the frames, and
// expects {"visual_observations": [...]} from a multimodal model. Both
// return unordered Observations; a reply that cannot be decoded is an
// ErrAnalysisService failure and a transport failure is ErrRemoteService.
package analysis
