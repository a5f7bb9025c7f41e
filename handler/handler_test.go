package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/Protocol-Lattice/gqlls/document"
	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/registry"
	"github.com/Protocol-Lattice/gqlls/schema"
)

const testSchemaName = "handler-test"

func registerSchema(t *testing.T) {
	t.Helper()
	s, err := schema.Parse("type Query { user: User } type User { id: ID name: String }")
	if err != nil {
		t.Fatal(err)
	}
	registry.Register(testSchemaName, s)
}

func post(t *testing.T, path string, req Request) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	Mux().ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body)))
	return w
}

func labels(items []language.Suggestion) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	Mux().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/complete", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestHandlerInvalidJSON(t *testing.T) {
	for _, path := range []string{"/highlight", "/complete", "/hover", "/diagnostics"} {
		w := httptest.NewRecorder()
		Mux().ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString("not-json")))
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid JSON") {
			t.Errorf("%s: expected status 400 with an invalid JSON error, got %d %q", path, w.Code, w.Body.String())
		}
	}
}

func TestHandlerUnknownSchema(t *testing.T) {
	w := post(t, "/hover", Request{Schema: "missing", Text: "{ user }"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHighlight(t *testing.T) {
	w := post(t, "/highlight", Request{Text: "{ user }"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var spans []language.Span
	if err := json.Unmarshal(w.Body.Bytes(), &spans); err != nil {
		t.Fatal(err)
	}
	if len(spans) != 3 || spans[1].Text != "user" || spans[1].Style != "property" {
		t.Errorf("unexpected spans %+v", spans)
	}

	w = post(t, "/highlight", Request{Language: "json", Text: `{"a": 1}`})
	spans = nil
	if err := json.Unmarshal(w.Body.Bytes(), &spans); err != nil {
		t.Fatal(err)
	}
	i := slices.IndexFunc(spans, func(s language.Span) bool { return s.Text == "1" })
	if i < 0 || spans[i].Style != "number" {
		t.Errorf("expected a number span, got %+v", spans)
	}

	if w := post(t, "/highlight", Request{Text: ""}); strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected an empty list, got %q", w.Body.String())
	}

	if w := post(t, "/highlight", Request{Language: "xml", Text: "<a/>"}); w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for an unknown language, got %d", w.Code)
	}
}

func TestComplete(t *testing.T) {
	registerSchema(t)

	w := post(t, "/complete", Request{Schema: testSchemaName, Text: "{ ", Position: language.Position{Character: 2}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var items []language.Suggestion
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(labels(items), "user") {
		t.Errorf("expected user among %v", labels(items))
	}

	w = post(t, "/complete", Request{Schema: testSchemaName, Text: "{ nope { ", Position: language.Position{Character: 9}})
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected an empty list, got %q", w.Body.String())
	}
}

func TestHover(t *testing.T) {
	registerSchema(t)

	w := post(t, "/hover", Request{Schema: testSchemaName, Text: "{ user }", Position: language.Position{Character: 4}})
	var resp HoverResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Contents, "Query.user") {
		t.Errorf("unexpected hover %q", resp.Contents)
	}
}

func TestDiagnostics(t *testing.T) {
	registerSchema(t)

	w := post(t, "/diagnostics", Request{Schema: testSchemaName, Text: "{ nope }"})
	var diags []language.Diagnostic
	if err := json.Unmarshal(w.Body.Bytes(), &diags); err != nil {
		t.Fatal(err)
	}
	if len(diags) != 1 || diags[0].Severity != language.SeverityWarning {
		t.Errorf("expected one warning, got %+v", diags)
	}

	w = post(t, "/diagnostics", Request{Schema: testSchemaName, Text: "{ user { id } }"})
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected an empty list, got %q", w.Body.String())
	}
}

func TestSession(t *testing.T) {
	registerSchema(t)

	srv := httptest.NewServer(Mux())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/session", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	send := func(msg Message) Message {
		t.Helper()
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write: %v", err)
		}
		var reply Message
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		if reply.ID != msg.ID {
			t.Errorf("expected ID %d echoed, got %d", msg.ID, reply.ID)
		}
		return reply
	}

	if reply := send(Message{Type: "change", ID: 1}); reply.Type != "error" || reply.Error != errNotOpen.Error() {
		t.Errorf("expected an error before open, got %+v", reply)
	}

	reply := send(Message{Type: "open", ID: 2, Schema: testSchemaName, Text: "{ nope }"})
	if reply.Type != "diagnostics" || len(reply.Diagnostics) != 1 {
		t.Errorf("expected one diagnostic after open, got %+v", reply)
	}

	edit := document.Edit{
		Range: &language.Range{Start: language.Position{Character: 2}, End: language.Position{Character: 6}},
		Text:  "user { }",
	}
	reply = send(Message{Type: "change", ID: 3, Edits: []document.Edit{edit}})
	if reply.Type != "diagnostics" || len(reply.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics after the fix, got %+v", reply)
	}

	// The text is now "{ user { } }".
	reply = send(Message{Type: "complete", ID: 4, Position: language.Position{Character: 9}})
	if got := labels(reply.Items); reply.Type != "completions" || !slices.Contains(got, "id") || !slices.Contains(got, "name") {
		t.Errorf("expected the fields of User, got %+v", reply)
	}

	reply = send(Message{Type: "hover", ID: 5, Position: language.Position{Character: 4}})
	if reply.Type != "hover" || !strings.Contains(reply.Contents, "Query.user") {
		t.Errorf("unexpected hover %+v", reply)
	}

	reply = send(Message{Type: "bogus", ID: 6})
	if reply.Type != "error" || !strings.Contains(reply.Error, "bogus") {
		t.Errorf("expected an error for an unknown message type, got %+v", reply)
	}

	reply = send(Message{Type: "open", ID: 7, Schema: "missing"})
	if reply.Type != "error" {
		t.Errorf("expected an error for an unknown schema, got %+v", reply)
	}

	reply = send(Message{Type: "open", ID: 8, Language: "json", Text: `{"a": 1}`})
	if reply.Type != "diagnostics" || len(reply.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics for a variables document, got %+v", reply)
	}
}
