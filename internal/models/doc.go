// Package models defines the domain entities shared across the harvest
// pipeline: query descriptors produced by the resolver, partial and
// canonical track metadata records, and the per-invocation playlist
// context.
//
// Entities here are plain values. The resolver creates descriptors and the
// playlist context once per run; the merger produces one canonical
// TrackMetadata per track. None of them are mutated after creation.
package models
