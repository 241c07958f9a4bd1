package restserver

import (
	"embed"
	"io/fs"
	"os"
)

// Embed the chart frontend
//
//go:embed all:assets
var assetsFS embed.FS

// GetAssets returns the assets filesystem, either from disk or embedded.
// Setting METEOPI_ASSETS_DIR to a directory serves assets straight from
// the filesystem, which avoids recompiling while tweaking the frontend.
func GetAssets() fs.FS {
	if dir := os.Getenv("METEOPI_ASSETS_DIR"); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}

	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("failed to create assets sub-filesystem: " + err.Error())
	}
	return assets
}
