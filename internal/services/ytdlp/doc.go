// Package ytdlp wraps the yt-dlp command-line extractor behind the Client
// interface the executor consumes.
//
// Resolve shells out with -J and decodes the metadata document. Execute
// renders a pipeline spec into tool arguments, streams JSON progress lines
// back through a callback, and treats a false callback return as a
// first-class abort request (ErrAborted), not a failure.
//
// The exec seam is package-level so tests can substitute a scripted process.
package ytdlp
