// Command validate checks a directory of rendered chart artifacts
// against the JSON-lines request fixture that produced them. It verifies
// that every request has an artifact on disk, that PNG artifacts decode
// with sane dimensions, and that SVG artifacts are well formed XML.
//
// Usage:
//
//	go run ./cmd/validate -requests testdata/requests.jsonl -artifacts-dir artifacts
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/windvane/metplot/internal/render"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	requests := flag.String("requests", "", "path to JSON-lines request fixture")
	artifactsDir := flag.String("artifacts-dir", "", "directory containing rendered artifacts")
	flag.Parse()

	if *requests == "" || *artifactsDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*requests, *artifactsDir); code != 0 {
		os.Exit(code)
	}
}

func run(requestsPath, artifactsDir string) int {
	fmt.Println("=== Chart Artifact Validation ===")
	fmt.Println()

	reqs, err := loadRequests(requestsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load requests: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkCoverage(reqs, artifactsDir),
		checkImages(artifactsDir),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      - %s\n", e)
		}
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed (%d requests)\n", len(phases), len(reqs))
	return 0
}

func loadRequests(path string) ([]render.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reqs []render.Request
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 64<<20) // grid payloads make long lines
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var req render.Request
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(reqs)+1, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, sc.Err()
}

// checkCoverage verifies that every request has exactly one artifact file.
func checkCoverage(reqs []render.Request, dir string) *phase {
	p := &phase{name: "request coverage"}

	for _, req := range reqs {
		if req.ID == "" {
			p.errorf("request with chart %q has no ID", req.Chart)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, req.ID+".*"))
		if err != nil || len(matches) == 0 {
			p.errorf("no artifact for request %s", req.ID)
			continue
		}
		if len(matches) > 1 {
			p.errorf("request %s has %d artifacts, want 1", req.ID, len(matches))
		}
	}
	return p
}

// checkImages decodes every artifact in the directory.
func checkImages(dir string) *phase {
	p := &phase{name: "image integrity"}

	entries, err := os.ReadDir(dir)
	if err != nil {
		p.errorf("read artifacts dir: %v", err)
		return p
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch filepath.Ext(e.Name()) {
		case ".png":
			checkPNG(p, path)
		case ".svg":
			checkSVG(p, path)
		default:
			p.errorf("%s: unexpected file type", e.Name())
		}
	}
	return p
}

func checkPNG(p *phase, path string) {
	f, err := os.Open(path)
	if err != nil {
		p.errorf("%s: %v", filepath.Base(path), err)
		return
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		p.errorf("%s: decode: %v", filepath.Base(path), err)
		return
	}
	if cfg.Width < 100 || cfg.Height < 100 {
		p.errorf("%s: implausible dimensions %dx%d", filepath.Base(path), cfg.Width, cfg.Height)
	}
}

func checkSVG(p *phase, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("%s: %v", filepath.Base(path), err)
		return
	}
	var doc struct {
		XMLName xml.Name `xml:"svg"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		p.errorf("%s: not valid svg: %v", filepath.Base(path), err)
	}
}
