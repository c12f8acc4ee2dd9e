package httpapi

import (
	"net/http"
)

var publicRoutes = []string{"/", "/test", "/audio", "/whatsapp"}

const homePage = `<html>
    <head><title>Bot WhatsApp</title></head>
    <body>
        <h1>✅ Bot WhatsApp está funcionando!</h1>
        <p>Rotas disponíveis:</p>
        <ul>
            <li><a href="/">/</a> - Esta página</li>
            <li><a href="/test">/test</a> - Teste JSON</li>
            <li><a href="/audio">/audio</a> - Áudio de teste</li>
            <li>/whatsapp - Webhook do Twilio (POST)</li>
        </ul>
    </body>
</html>
`

func (r *Router) handleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(homePage))
}

func (r *Router) handleTest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "online",
		"message":    "Servidor está funcionando corretamente!",
		"base_dir":   r.artifact.Dir(),
		"audio_file": r.artifact.Path(),
		"routes":     publicRoutes,
	})
}
