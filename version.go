// Package tao holds the taogen release version.
package tao

// Version is the taogen release version.
const Version = "0.1.0"
