// Package appfs embeds the static assets the binary ships with: SQL
// migrations and email templates.
package appfs

import "embed"

// The _base templates must be named explicitly: directory patterns skip
// files whose names start with an underscore.
//
//go:embed migrations assets assets/templates/email/_base.txt assets/templates/email/_base.gohtml
var FS embed.FS
