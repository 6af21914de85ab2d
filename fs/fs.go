// Package appfs embeds non-Go assets (database migrations, email templates)
// so built binaries do not depend on the working directory.
package appfs

import "embed"

//go:embed migrations templates
var FS embed.FS
