package httptransport

import (
	"net/http"

	"github.com/mssola/useragent"

	"custodia/internal/audit"
)

// ClientMetadata parses the User-Agent and stashes the client description on
// the request context, where the verification service picks it up for audit
// events.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := useragent.New(r.Header.Get("User-Agent"))
		browser, _ := ua.Browser()

		ctx := audit.WithClientInfo(r.Context(), audit.ClientInfo{
			OS:      ua.OS(),
			Browser: browser,
			Mobile:  ua.Mobile(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
