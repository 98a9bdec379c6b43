// Package language canonicalizes subtitle language selectors to the
// two-letter tags the extractor expects, accepting full names, ISO 639-2
// codes, and region-qualified tags.
package language
