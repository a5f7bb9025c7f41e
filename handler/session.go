package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Protocol-Lattice/gqlls/document"
	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/registry"
	"github.com/Protocol-Lattice/gqlls/schema"
)

// Message is exchanged over a session in both directions. The client sends
// "open", "change", "complete" and "hover"; the server answers with
// "diagnostics", "completions", "hover" or "error", echoing the ID.
type Message struct {
	Type        string                `json:"type"`
	ID          int                   `json:"id,omitempty"`
	Schema      string                `json:"schema,omitempty"`
	Language    string                `json:"language,omitempty"`
	Text        string                `json:"text,omitempty"`
	Edits       []document.Edit       `json:"edits,omitempty"`
	Position    language.Position     `json:"position"`
	Items       []language.Suggestion `json:"items,omitempty"`
	Contents    string                `json:"contents,omitempty"`
	Diagnostics []language.Diagnostic `json:"diagnostics,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// upgrader upgrades HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// session is the state of one editor connection.
type session struct {
	conn   *websocket.Conn
	doc    *document.Document
	schema *schema.Schema
}

// Session serves one editor over WebSocket. The document stays open for the
// life of the connection and each change re-tokenizes only what it affects.
func Session(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warningf("unable to upgrade to websocket: %v", err)
		return
	}
	defer conn.Close()

	sess := &session{conn: conn}
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Infof("session ended: %v", err)
			}
			return
		}
		reply := sess.handle(&msg)
		reply.ID = msg.ID
		if err := conn.WriteJSON(reply); err != nil {
			log.Errorf("failed to write message: %v", err)
			return
		}
	}
}

func (sess *session) handle(msg *Message) Message {
	switch msg.Type {
	case "open":
		p, err := parserFor(msg.Language)
		if err != nil {
			return errorMessage(err)
		}
		if msg.Schema != "" || sess.schema == nil {
			s, err := registry.Global().Lookup(msg.Schema)
			if err != nil && msg.Schema != "" {
				return errorMessage(err)
			}
			sess.schema = s
		}
		sess.doc = document.New(p, msg.Text)
		return sess.diagnostics()

	case "change":
		if sess.doc == nil {
			return errorMessage(errNotOpen)
		}
		for _, e := range msg.Edits {
			if _, err := sess.doc.Apply(e); err != nil {
				return errorMessage(err)
			}
		}
		return sess.diagnostics()

	case "complete":
		if sess.doc == nil {
			return errorMessage(errNotOpen)
		}
		tok := sess.doc.TokenAt(msg.Position, 1)
		items := language.SuggestionsAt(sess.schema, tok, sess.doc.Text())
		if items == nil {
			items = []language.Suggestion{}
		}
		return Message{Type: "completions", Items: items}

	case "hover":
		if sess.doc == nil {
			return errorMessage(errNotOpen)
		}
		tok := sess.doc.TokenAt(msg.Position, 1)
		return Message{Type: "hover", Contents: language.HoverAt(sess.schema, tok)}
	}
	return errorMessage(fmt.Errorf("unknown message type %q", msg.Type))
}

var errNotOpen = errors.New("no document is open")

func (sess *session) diagnostics() Message {
	if sess.doc.Parser() != language.Parser() {
		return Message{Type: "diagnostics"}
	}
	return Message{Type: "diagnostics", Diagnostics: language.Diagnostics(sess.schema, sess.doc.Text())}
}

func errorMessage(err error) Message {
	return Message{Type: "error", Error: err.Error()}
}
