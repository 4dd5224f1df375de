// Package site serves the embedded storefront landing page.
package site

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
)

//go:embed static/*
var staticFS embed.FS

// FS returns an http.FileSystem for the embedded landing page.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// Register attaches the landing page at / to r. It must be registered after
// the API routes so it does not shadow them.
func Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Handle("/", http.FileServer(FS())).Methods(http.MethodGet)
}
