package middleware

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"
)

// Device summarizes the client that drove a verification flow. It rides on
// audit events so operators can distinguish SDK-on-mobile from web flows.
type Device struct {
	Browser string
	OS      string
	Mobile  bool
}

type contextKeyDevice struct{}

// DeviceInfo parses the User-Agent header once per request and stores the
// summary in context for audit emission.
func DeviceInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := useragent.New(r.UserAgent())
		browser, _ := ua.Browser()
		d := Device{
			Browser: browser,
			OS:      ua.OS(),
			Mobile:  ua.Mobile(),
		}
		ctx := context.WithValue(r.Context(), contextKeyDevice{}, d)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDevice retrieves the parsed device summary, zero-valued when absent.
func GetDevice(ctx context.Context) Device {
	d, _ := ctx.Value(contextKeyDevice{}).(Device)
	return d
}
