package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/blockprint/blockprint/pkg/render/draw"
	"github.com/blockprint/blockprint/pkg/render/sink"
	"github.com/blockprint/blockprint/pkg/store"
)

const cottageJSON = `{
	"building": {
		"width_blocks": 10,
		"wall_height_blocks": 5,
		"depth_blocks": 8,
		"roof": {"type": "gable", "height_blocks": 4, "overhang": 1},
		"openings": [{"type": "door", "x": 4, "y": 0, "w": 1, "h": 2}]
	}
}`

const cottageYAML = `
building:
  width_blocks: 6
  wall_height_blocks: 3
  roof:
    type: flat
    height_blocks: 1
`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	st := store.New(nil)
	ts := httptest.NewServer(New(st, opts...).Handler())
	t.Cleanup(func() {
		ts.Close()
		st.Close()
	})
	return ts
}

func do(t *testing.T, method, url, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/api/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	h := decode[healthResponse](t, resp)
	if h.Status != "ok" || h.Version == "" {
		t.Errorf("health = %+v", h)
	}
}

func TestPalettes(t *testing.T) {
	ts := newTestServer(t)
	out := decode[map[string]any](t, do(t, http.MethodGet, ts.URL+"/api/palettes", "", ""))
	if out["default"] != "night" {
		t.Errorf("default = %v", out["default"])
	}
	if list, _ := out["palettes"].([]any); len(list) == 0 {
		t.Errorf("palettes = %v", out["palettes"])
	}
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name        string
		query       string
		body        string
		contentType string
		check       func(t *testing.T, body []byte)
	}{
		{
			name:        "svg default",
			body:        cottageJSON,
			contentType: "image/svg+xml",
			check: func(t *testing.T, body []byte) {
				if !bytes.Contains(body, []byte("<svg")) || !bytes.Contains(body, []byte(`width="800"`)) {
					t.Errorf("svg = %.200s", body)
				}
			},
		},
		{
			name:        "json pass",
			query:       "?format=json&width=400&height=300&density=2&palette=night",
			body:        cottageJSON,
			contentType: "application/json",
			check: func(t *testing.T, body []byte) {
				var p sink.Pass
				if err := json.Unmarshal(body, &p); err != nil {
					t.Fatal(err)
				}
				if p.Width != 400 || p.Height != 300 || p.Density != 2 || p.Palette != "night" {
					t.Errorf("pass header = %+v", p)
				}
				if len(p.Commands) == 0 || p.Commands[0].Op != draw.OpClearRect {
					t.Errorf("first command = %+v", p.Commands)
				}
				if draw.Count(p.Commands, draw.OpText) != 1 {
					t.Error("label missing")
				}
			},
		},
		{
			name:        "yaml body without label",
			query:       "?format=json&label=false",
			body:        cottageYAML,
			contentType: "application/json",
			check: func(t *testing.T, body []byte) {
				var p sink.Pass
				json.Unmarshal(body, &p)
				if draw.Count(p.Commands, draw.OpText) != 0 {
					t.Error("label=false should hide the label")
				}
			},
		},
		{
			name:        "terminal cells",
			query:       "?format=txt&width=160&height=64",
			body:        cottageJSON,
			contentType: "text/plain; charset=utf-8",
			check: func(t *testing.T, body []byte) {
				if lines := strings.Count(string(body), "\n"); lines != 4 {
					t.Errorf("rows = %d, want 4", lines)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/api/preview"+tt.query, "", tt.body)
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if resp.Header.Get("X-Total-Blocks") == "" {
				t.Error("missing X-Total-Blocks")
			}
			tt.check(t, body)
		})
	}
}

func TestPreviewErrors(t *testing.T) {
	ts := newTestServer(t, WithMaxBodyBytes(4096))

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"empty body", "", "", 400, "INVALID_BLUEPRINT"},
		{"malformed json", "", "{", 400, "INVALID_BLUEPRINT"},
		{"invalid blueprint", "", `{"building":{"width_blocks":0}}`, 400, "INVALID_BLUEPRINT"},
		{"bad format", "?format=gif", cottageJSON, 400, "INVALID_FORMAT"},
		{"bad palette", "?palette=neon", cottageJSON, 400, "INVALID_PALETTE"},
		{"bad width", "?width=wide", cottageJSON, 400, "INVALID_VIEWPORT"},
		{"negative height", "?height=-5", cottageJSON, 400, "INVALID_VIEWPORT"},
		{"huge png", "?format=png&width=1000000&height=1000000&density=4", cottageJSON, 400, "INVALID_VIEWPORT"},
		{"huge terminal", "?format=txt&width=24000&height=24000", cottageJSON, 400, "INVALID_VIEWPORT"},
		{"dense beyond limit", "?width=5000&height=300&density=2", cottageJSON, 400, "INVALID_VIEWPORT"},
		{"bad viz type", "?viz_type=iso", cottageJSON, 400, "INVALID_VIZ_TYPE"},
		{"bad grid flag", "?grid=maybe", cottageJSON, 400, "INVALID_INPUT"},
		{"too large", "", `{"pad":"` + strings.Repeat("x", 5000) + `"}`, 413, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/api/preview"+tt.query, "application/json", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			e := decode[errorResponse](t, resp)
			if e.Detail == "" || (tt.code != "" && e.Code != tt.code) {
				t.Errorf("error = %+v, want code %s", e, tt.code)
			}
		})
	}
}

func TestBlueprintLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/blueprints", "application/json", cottageJSON)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[map[string]any](t, resp)
	id, _ := created["id"].(string)
	if id == "" || resp.Header.Get("Location") != "/api/blueprints/"+id {
		t.Fatalf("created = %v, location %q", created, resp.Header.Get("Location"))
	}
	if created["total_blocks"].(float64) <= 0 {
		t.Errorf("total_blocks = %v", created["total_blocks"])
	}

	again := do(t, http.MethodPost, ts.URL+"/api/blueprints", "application/json", cottageJSON)
	if again.StatusCode != http.StatusOK || decode[map[string]any](t, again)["id"] != id {
		t.Error("identical blueprint should return the existing record")
	}

	got := decode[map[string]any](t, do(t, http.MethodGet, ts.URL+"/api/blueprints/"+id, "", ""))
	if got["id"] != id || got["digest"] == "" {
		t.Errorf("get = %v", got)
	}

	png := do(t, http.MethodGet, ts.URL+"/api/blueprints/"+id+"/preview.png?width=200&height=100", "", "")
	body, _ := io.ReadAll(png.Body)
	if png.StatusCode != http.StatusOK || png.Header.Get("Content-Type") != "image/png" ||
		!bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Errorf("png preview: status %d, type %q", png.StatusCode, png.Header.Get("Content-Type"))
	}

	svg := do(t, http.MethodGet, ts.URL+"/api/blueprints/"+id+"/preview.svg", "", "")
	body, _ = io.ReadAll(svg.Body)
	if !bytes.Contains(body, []byte("<title>"+id+"</title>")) {
		t.Errorf("svg should be titled with the id: %.300s", body)
	}

	del := do(t, http.MethodDelete, ts.URL+"/api/blueprints/"+id, "", "")
	if del.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", del.StatusCode)
	}
	missing := do(t, http.MethodGet, ts.URL+"/api/blueprints/"+id, "", "")
	if missing.StatusCode != http.StatusNotFound || decode[errorResponse](t, missing).Code != "BLUEPRINT_NOT_FOUND" {
		t.Errorf("get after delete status = %d", missing.StatusCode)
	}
}

func TestCreateBlueprintNormalize(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/api/blueprints?normalize=true", "application/json",
		`{"building":{"width_blocks":7,"openings":[{"type":"window","x":1,"y":1}]}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	rec := decode[struct {
		Warnings  []string `json:"warnings"`
		Blueprint struct {
			Building struct {
				WallHeightBlocks int `json:"wall_height_blocks"`
				Openings         []struct {
					W, H int
				} `json:"openings"`
			} `json:"building"`
		} `json:"blueprint"`
	}](t, resp)
	if len(rec.Warnings) != 2 {
		t.Errorf("warnings = %v", rec.Warnings)
	}
	b := rec.Blueprint.Building
	if b.WallHeightBlocks != 12 || b.Openings[0].W != 1 || b.Openings[0].H != 3 {
		t.Errorf("building = %+v", b)
	}
}

func TestBlueprintBadID(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/api/blueprints/..%2Fsecret", "", "")
	if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, WithCORSOrigins("http://localhost:5173"))

	request := func(t *testing.T, method, origin string, preflight bool) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(method, ts.URL+"/api/health", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if preflight {
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp
	}

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantOrigin string
	}{
		{"preflight", http.MethodOptions, "http://localhost:5173", true, "http://localhost:5173"},
		{"simple request", http.MethodGet, "http://localhost:5173", false, "http://localhost:5173"},
		{"no origin", http.MethodGet, "", false, ""},
		{"unlisted origin", http.MethodGet, "http://evil.example", false, ""},
		{"unlisted preflight", http.MethodOptions, "http://evil.example", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := request(t, tt.method, tt.origin, tt.preflight)
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if resp.Header.Get("Access-Control-Allow-Credentials") != "" {
				t.Error("credentials should never be allowed")
			}
			if tt.preflight && tt.wantOrigin != "" && resp.StatusCode/100 != 2 {
				t.Errorf("preflight status = %d", resp.StatusCode)
			}
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	ts := newTestServer(t, WithCORSOrigins("*"))
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "" {
		t.Error("wildcard origin must not allow credentials")
	}
}

func TestNoCORSByDefault(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q without configured origins", got)
	}
}

func TestNotFoundRoute(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/nope", "", "")
	if resp.StatusCode != http.StatusNotFound || decode[errorResponse](t, resp).Code != "NOT_FOUND" {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestLive(t *testing.T) {
	ts := newTestServer(t)
	created := decode[map[string]any](t, do(t, http.MethodPost, ts.URL+"/api/blueprints", "", cottageJSON))
	id := created["id"].(string)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/blueprints/" + id + "/live?width=400&height=300"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseNow()

	read := func() sink.Pass {
		t.Helper()
		var p sink.Pass
		if err := wsjson.Read(ctx, conn, &p); err != nil {
			t.Fatalf("read pass: %v", err)
		}
		return p
	}

	first := read()
	if first.Width != 400 || first.Height != 300 || first.Commands[0].Op != draw.OpClearRect {
		t.Errorf("first pass = %vx%v, %d commands", first.Width, first.Height, len(first.Commands))
	}

	if err := wsjson.Write(ctx, conn, map[string]any{"width": 1000, "density": 2}); err != nil {
		t.Fatal(err)
	}
	second := read()
	if second.Width != 1000 || second.Height != 300 || second.Density != 2 {
		t.Errorf("resized pass = %vx%v@%v", second.Width, second.Height, second.Density)
	}

	if err := wsjson.Write(ctx, conn, map[string]any{}); err != nil {
		t.Fatal(err)
	}
	if refreshed := read(); refreshed.Width != 1000 || len(refreshed.Commands) != len(second.Commands) {
		t.Errorf("refresh pass = %vx%v, %d commands", refreshed.Width, refreshed.Height, len(refreshed.Commands))
	}

	swap := map[string]any{"blueprint": json.RawMessage(`{"building":{"width_blocks":3,"wall_height_blocks":2}}`)}
	if err := wsjson.Write(ctx, conn, swap); err != nil {
		t.Fatal(err)
	}
	if swapped := read(); len(swapped.Commands) >= len(second.Commands) {
		t.Errorf("smaller blueprint should draw fewer commands: %d vs %d", len(swapped.Commands), len(second.Commands))
	}

	if err := wsjson.Write(ctx, conn, map[string]any{"width": -1}); err != nil {
		t.Fatal(err)
	}
	var p sink.Pass
	err = wsjson.Read(ctx, conn, &p)
	if websocket.CloseStatus(err) != websocket.StatusPolicyViolation {
		t.Errorf("invalid size should close with policy violation, got %v", err)
	}
}

func TestLiveRejectsOversizedSurface(t *testing.T) {
	ts := newTestServer(t)
	created := decode[map[string]any](t, do(t, http.MethodPost, ts.URL+"/api/blueprints", "", cottageJSON))
	base := "/api/blueprints/" + created["id"].(string) + "/live"

	resp := do(t, http.MethodGet, ts.URL+base+"?width=100000&height=300", "", "")
	if resp.StatusCode != http.StatusBadRequest || decode[errorResponse](t, resp).Code != "INVALID_VIEWPORT" {
		t.Errorf("oversized query status = %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+base, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseNow()

	var p sink.Pass
	if err := wsjson.Read(ctx, conn, &p); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if err := wsjson.Write(ctx, conn, map[string]any{"width": 6000, "density": 2}); err != nil {
		t.Fatal(err)
	}
	err = wsjson.Read(ctx, conn, &p)
	if websocket.CloseStatus(err) != websocket.StatusPolicyViolation {
		t.Errorf("oversized resize should close with policy violation, got %v", err)
	}
}

func TestCloseReason(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"short", "invalid width: -1"},
		{"ascii", strings.Repeat("x", 300)},
		{"multibyte", strings.Repeat("é", 100)},
		{"multibyte offset", "a" + strings.Repeat("€", 60)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := closeReason(errors.New(tt.msg))
			if len(got) > maxCloseReason {
				t.Errorf("len = %d, want <= %d", len(got), maxCloseReason)
			}
			if !utf8.ValidString(got) {
				t.Errorf("reason %q is not valid UTF-8", got)
			}
			if !strings.HasPrefix(tt.msg, got) {
				t.Errorf("reason %q is not a prefix of the message", got)
			}
			if len(tt.msg) <= maxCloseReason && got != tt.msg {
				t.Errorf("short message changed: %q", got)
			}
			if len(tt.msg) > maxCloseReason && len(got) < maxCloseReason-utf8.UTFMax {
				t.Errorf("reason cut too short: %d bytes", len(got))
			}
		})
	}
}

func TestLiveUnknownBlueprint(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/api/blueprints/4b1d6c2e-0000-4000-8000-000000000000/live", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
