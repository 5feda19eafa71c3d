package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var StaticFS embed.FS

// FS returns the embedded assets rooted at the asset directory, ready to be served under /static.
func FS() http.FileSystem {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		// the directory is embedded at compile time
		panic(err)
	}
	return http.FS(sub)
}
