package httpapi

import (
	"encoding/xml"
	"net/http"
)

// Messaging TwiML: one <Message> with either a body or a <Media> link.
// Twilio expects Content-Type: text/xml.
type twimlResponse struct {
	XMLName xml.Name      `xml:"Response"`
	Message *twimlMessage `xml:"Message,omitempty"`
}

type twimlMessage struct {
	Body  string `xml:",chardata"`
	Media string `xml:"Media,omitempty"`
}

func textReply(text string) twimlResponse {
	return twimlResponse{Message: &twimlMessage{Body: text}}
}

func mediaReply(url string) twimlResponse {
	return twimlResponse{Message: &twimlMessage{Media: url}}
}

func writeTwiML(w http.ResponseWriter, resp twimlResponse) {
	out, err := xml.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to render reply", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
