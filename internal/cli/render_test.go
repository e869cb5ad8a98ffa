package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		output  string
		input   string
		format  string
		formats int
		want    string
	}{
		{"derived from input", "", "plans/cottage.yaml", "svg", 1, "plans/cottage.svg"},
		{"explicit file", "site/front.png", "cottage.json", "png", 1, "site/front.png"},
		{"explicit base for several formats", "site/front", "cottage.json", "pdf", 2, "site/front.pdf"},
		{"known extension stripped", "site/front.svg", "cottage.json", "png", 2, "site/front.png"},
		{"directory", outDir, "plans/cottage.json", "svg", 1, filepath.Join(outDir, "cottage.svg")},
		{"stdin", "", "-", "svg", 2, "blueprint.svg"},
		{"never the input", "", "plans/cottage.json", "json", 1, "plans/cottage-preview.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPath(tt.output, tt.input, tt.format, "preview", tt.formats)
			if got != tt.want {
				t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.output, tt.input, tt.format, got, tt.want)
			}
		})
	}
}

func TestIsYAML(t *testing.T) {
	tests := []struct {
		input string
		data  string
		want  bool
	}{
		{"a.yaml", "{}", true},
		{"a.YML", "", true},
		{"a.json", "building: {}", false},
		{"-", `  {"building":{}}`, false},
		{"-", "building:\n  width_blocks: 3", true},
	}
	for _, tt := range tests {
		if got := isYAML(tt.input, []byte(tt.data)); got != tt.want {
			t.Errorf("isYAML(%q, %q) = %v, want %v", tt.input, tt.data, got, tt.want)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "cottage.json", cottageJSON)

	t.Run("svg next to input", func(t *testing.T) {
		out, err := runCLI(t, "", "render", input)
		if err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "cottage.svg"))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(data, []byte("<svg")) {
			t.Errorf("not an svg: %.60s", data)
		}
		if !strings.Contains(out, "cottage.svg") || !strings.Contains(out, "1 segment") {
			t.Errorf("summary = %q", out)
		}
	})

	t.Run("several formats", func(t *testing.T) {
		base := filepath.Join(dir, "multi", "front")
		if _, err := runCLI(t, "", "render", input, "-f", "svg,png,json", "-o", base); err != nil {
			t.Fatal(err)
		}
		for _, ext := range []string{".svg", ".png", ".json"} {
			if _, err := os.Stat(base + ext); err != nil {
				t.Errorf("missing %s: %v", ext, err)
			}
		}
		png, _ := os.ReadFile(base + ".png")
		if !bytes.HasPrefix(png, []byte("\x89PNG")) {
			t.Error("png output lacks the PNG signature")
		}
	})

	t.Run("stdin to stdout as text", func(t *testing.T) {
		out, err := runCLI(t, cottageJSON, "render", "-f", "txt", "--columns", "40", "--rows", "10")
		if err != nil {
			t.Fatal(err)
		}
		if lines := strings.Count(strings.TrimRight(out, "\n"), "\n") + 1; lines != 10 {
			t.Errorf("txt output has %d lines, want 10", lines)
		}
	})

	t.Run("structure", func(t *testing.T) {
		out, err := runCLI(t, cottageJSON, "render", "-t", "structure", "-f", "txt", "-")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "digraph") {
			t.Errorf("structure txt should be DOT source: %.60s", out)
		}
	})

	t.Run("normalize", func(t *testing.T) {
		loose := writeFile(t, dir, "loose.json", `{"building":{"width_blocks":6,"openings":[{"type":"door","x":2,"y":0,"w":3,"h":3}]}}`)
		if _, err := runCLI(t, "", "render", "--normalize", loose, "-f", "json"); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(dir, "loose-preview.json")); err != nil {
			t.Error(err)
		}
	})
}

func TestRenderCommandErrors(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "cottage.json", cottageJSON)

	tests := []struct {
		name string
		args []string
		code bperrors.Code
	}{
		{"bad format", []string{"render", input, "-f", "gif"}, bperrors.ErrCodeInvalidFormat},
		{"bad type", []string{"render", input, "-t", "iso"}, bperrors.ErrCodeInvalidVizType},
		{"bad palette", []string{"render", input, "--palette", "neon"}, bperrors.ErrCodeInvalidPalette},
		{"negative width", []string{"render", input, "--width=-1"}, bperrors.ErrCodeInvalidViewport},
		{"missing file", []string{"render", filepath.Join(dir, "nope.json")}, bperrors.ErrCodeFileNotFound},
		{"file output for several inputs", []string{"render", input, input, "-o", "x.svg"}, bperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			if !bperrors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}
