// Package build writes a site out as a static tree.
//
// Run renders every published page, every listing, sitemap.xml and meta.json
// into an output directory. Watcher reruns the build when content changes and
// Scheduler reruns it on a fixed interval. All entry points share one Builder,
// which serializes runs.
package build
