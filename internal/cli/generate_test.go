package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blockprint/blockprint/pkg/blueprint"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

func TestGenerateCommand(t *testing.T) {
	dir := isolate(t)
	image := writeFile(t, dir, "castle.png", "PNGDATA")

	var gotStyle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/blueprint" {
			http.NotFound(w, r)
			return
		}
		gotStyle = r.FormValue("style")
		fmt.Fprint(w, `{
			"success": true,
			"blueprint": {"building": {"width_blocks": 9, "wall_height_blocks": 6}},
			"warnings": [],
			"raw_ai_json": {"model": "test"}
		}`)
	}))
	t.Cleanup(srv.Close)

	t.Run("writes normalized blueprint", func(t *testing.T) {
		raw := filepath.Join(dir, "castle.raw.json")
		out, err := runCLI(t, "", "generate", image, "--backend", srv.URL, "--style", "medieval", "--raw", raw)
		if err != nil {
			t.Fatal(err)
		}
		if gotStyle != "medieval" {
			t.Errorf("style = %q, want medieval", gotStyle)
		}

		bp, err := blueprint.ReadFile(filepath.Join(dir, "castle.json"))
		if err != nil {
			t.Fatal(err)
		}
		if b := bp.Building; b.WidthBlocks != 9 || b.DepthBlocks != blueprint.DefaultDepthBlocks {
			t.Errorf("building = %+v", b)
		}
		if data, err := os.ReadFile(raw); err != nil || !strings.Contains(string(data), "test") {
			t.Errorf("raw output = %q, %v", data, err)
		}
		for _, want := range []string{"castle.json", "depth_blocks missing", "blockprint preview"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("style from config", func(t *testing.T) {
		cfg := writeFile(t, dir, "gen.toml", "[backend]\nstyle = \"fantasy\"\n")
		if _, err := runCLI(t, "", "generate", image, "--config", cfg, "--backend", srv.URL, "-o", filepath.Join(dir, "out", "c.json")); err != nil {
			t.Fatal(err)
		}
		if gotStyle != "fantasy" {
			t.Errorf("style = %q, want fantasy", gotStyle)
		}
	})

	t.Run("invalid style", func(t *testing.T) {
		_, err := runCLI(t, "", "generate", image, "--backend", srv.URL, "--style", "brutalist")
		if !bperrors.Is(err, bperrors.ErrCodeInvalidInput) {
			t.Errorf("err = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("missing image", func(t *testing.T) {
		if _, err := runCLI(t, "", "generate", filepath.Join(dir, "nope.png"), "--backend", srv.URL); err == nil {
			t.Error("expected error for missing image")
		}
	})
}
