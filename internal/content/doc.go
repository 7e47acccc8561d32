// Package content loads Markdown content files into normalized items and
// groups them into per-type collections.
//
// An Item is built once from a single file: its front matter is decoded,
// relative asset references are resolved against the item URL, and the
// date, draft and excerpt keys are guaranteed to exist. A Collection scans
// one content type directory (plus one level of subdirectories) and keeps
// its items sorted by path.
package content
