// Package middleware holds the relay's HTTP middlewares.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/manavc-13/KIIT-Mailer/logger"
)

// Recovery recovers a handler panic, logs it with the stack on ERROR level
// and answers 500 with a JSON error body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			var stack []string
			for _, line := range strings.Split(strings.ReplaceAll(string(debug.Stack()), "\t", ""), "\n") {
				if line != "" {
					stack = append(stack, line)
				}
			}

			logger.FromContext(r.Context()).
				With("err", err).
				With("stack", stack).
				ErrorContext(r.Context(), "panic recovered from handler")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Internal Server Error"}` + "\n"))
		}()

		next.ServeHTTP(w, r)
	})
}
