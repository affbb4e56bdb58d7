// Package locales embeds the built-in translation catalogs.
package locales

import "embed"

//go:embed *.json
var FS embed.FS
