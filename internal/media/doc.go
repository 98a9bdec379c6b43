// Package media holds the format vocabulary shared by the option builder, the
// CLI, and validation: container and codec tables, bitrate menus, quality
// preset heights, named output templates, and loudness targets.
//
// Everything here is static data plus lookups; no I/O.
package media
