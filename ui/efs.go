// Package ui holds the embedded templates and static assets for the web UI.
package ui

import "embed"

//go:embed static templates
var Files embed.FS
