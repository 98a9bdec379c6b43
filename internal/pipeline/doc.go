// Package pipeline derives the declarative download pipeline for a job: the
// stream-selection expression, the target container, and the ordered
// post-processing steps with their arguments.
//
// Build is a pure function of the job config plus the sandbox path. The
// extractor client renders the resulting Spec into tool arguments; nothing
// here touches the network or the filesystem.
package pipeline
