// Package cellpatch holds build metadata for the cellpatch tool.
package cellpatch

// Version is the released version of cellpatch.
const Version = "0.1.0"
