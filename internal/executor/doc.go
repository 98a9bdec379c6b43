// Package executor runs a single download job from admission to its terminal
// state. Each run stages into a per-job sandbox under the destination, holds a
// shared advisory lock so orphan sweeps skip live work, and finalizes by
// moving placed files into the destination with last-writer-wins semantics.
package executor
