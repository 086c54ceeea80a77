// Package static embeds the browser frontend.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed public/*
var publicFS embed.FS

// GetFileSystem returns an http.FileSystem for the embedded public directory.
func GetFileSystem() http.FileSystem {
	fsys, err := fs.Sub(publicFS, "public")
	if err != nil {
		panic(err)
	}
	return http.FS(fsys)
}
