package httpapi

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// withTwilioSignature rejects webhook calls whose X-Twilio-Signature does not
// match the auth token.
func (r *Router) withTwilioSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		fullURL := r.baseURL(req) + req.URL.RequestURI()
		signature := req.Header.Get("X-Twilio-Signature")

		if !validTwilioSignature(r.cfg.TwilioAuthToken, fullURL, req.PostForm, signature) {
			r.logger.Warnf("webhook: rejected request with invalid signature (url=%s)", fullURL)
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// twilioSignature computes base64(HMAC-SHA1(token, url + sorted key/value pairs)).
func twilioSignature(authToken, fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		values := append([]string(nil), params[k]...)
		sort.Strings(values)
		for _, v := range values {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func validTwilioSignature(authToken, fullURL string, params url.Values, signature string) bool {
	if signature == "" {
		return false
	}
	expected := twilioSignature(authToken, fullURL, params)
	return hmac.Equal([]byte(expected), []byte(signature))
}
