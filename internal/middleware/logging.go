package middleware

import (
	"net/http"

	"github.com/sunderlandtech/backend/pkg"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent := r.Header.Get("User-Agent")
			reqIp, _ := pkg.ReadUserIP(r)
			log.Tracef(" ====> request [%s] from [%s] path: [%s] [UA: %s]", r.Method, reqIp, r.URL.Path, userAgent)
			next.ServeHTTP(w, r)
		})
	}
}
