// Package shell detects the user's shell and explains how to put the
// install directory on PATH. It never edits shell startup files.
package shell
