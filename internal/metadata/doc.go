// Package metadata turns free-form queries and video titles into
// structured track fields and merges metadata from multiple sources
// into one canonical record.
package metadata
