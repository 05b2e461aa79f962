package tls

import (
	"net"
	"net/http"

	"todolist-web/internal/logging"
)

// RedirectHandler sends plain HTTP requests to the HTTPS listener. Form posts
// get 308 so the browser repeats the POST against the secure origin.
func RedirectHandler(httpsPort string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if httpsPort != "443" {
			host = net.JoinHostPort(host, httpsPort)
		}
		target := "https://" + host + r.URL.RequestURI()

		status := http.StatusMovedPermanently
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			status = http.StatusPermanentRedirect
		}

		logging.Logger.WithFields(map[string]interface{}{
			"client_ip": r.RemoteAddr,
			"method":    r.Method,
			"target":    target,
		}).Debug("HTTP to HTTPS redirect")

		http.Redirect(w, r, target, status)
	})
}
