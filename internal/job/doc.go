// Package job defines the immutable per-download configuration, the forward
// lifecycle status machine, the terminal outcome record, and the cooperative
// cancellation flag.
package job
