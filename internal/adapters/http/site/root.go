// Package site serves the embedded birth profile form.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded site to mux at root /. Paths with no
// embedded file answer 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("/", files)
}
