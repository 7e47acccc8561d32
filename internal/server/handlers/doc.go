// Package handlers contains the HTTP handlers of the mdsite server.
//
// ContentHandlers answer crawler-facing requests: pages, listings, the home
// redirect, the sitemap and the JSON index. MonitoringHandlers expose health.
// Handlers take an explicit responses.Context instead of sharing a global
// content type, and report failures through the foundation/errors adapter.
package handlers
