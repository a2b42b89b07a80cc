package middleware

import (
	"net/http"

	pageerrors "github.com/go-drift/pagelayout/pkg/errors"
)

// Recovery turns handler panics into 500 responses. The panic is reported
// through the page error handler.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer pageerrors.RecoverWithCallback("http "+r.URL.Path, func(any) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
		next.ServeHTTP(w, r)
	})
}
