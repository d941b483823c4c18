// Package static embeds the browser assets served by the web service.
package static

import "embed"

// ServiceWorkerFile is the service worker script, served from the root scope.
const ServiceWorkerFile = "sw.js"

// ManifestFile is the web app manifest.
const ManifestFile = "manifest.webmanifest"

// FS exposes web static assets for HTTP serving.
//
//go:embed *.css *.js *.webmanifest
var FS embed.FS
