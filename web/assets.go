// Package web contains the embedded landing page served at the root path.
package web

import "embed"

// Assets holds the static pages bundled into the binary.
//
//go:embed *.html
var Assets embed.FS
