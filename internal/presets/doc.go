// Package presets stores named partial job configurations in a TOML file
// under the state directory. A preset applies between the defaults and the
// command-line flags.
package presets
