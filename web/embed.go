package web

import "embed"

// Templates embeds HTML templates for pages and print documents.
//
//go:embed templates/**/*.html
var Templates embed.FS
