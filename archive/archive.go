// Package archive reads and writes the agent package format: a
// gzip-compressed tar containing manifest.json, a baml_src/ directory, and
// the compiled script named by the manifest's entry_point. Grounded on the
// original runtime's crates/baml-rt-builder and the teacher's
// pkg/builder/* command structure.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentrt/baml-agent-runtime/rterr"
)

const defaultEntryPoint = "dist/index.js"

// Manifest is manifest.json's shape. Missing Name or Version is rejected.
type Manifest struct {
	Version     string         `json:"version"`
	Name        string         `json:"name"`
	EntryPoint  string         `json:"entry_point,omitempty"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Package is a loaded agent archive: the manifest, the compiled
// entry-point script, and every other regular file keyed by its path in
// BamlSrc (the baml_src/ schema files among them).
type Package struct {
	Manifest   Manifest
	BamlSrc    map[string][]byte
	ScriptCode string
}

// Load reads and validates a gzip+tar agent package from path.
func Load(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rterr.IO("failed to open package", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a gzip+tar agent package from r.
func Read(r io.Reader) (*Package, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, rterr.IO("failed to open gzip stream", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	pkg := &Package{BamlSrc: map[string][]byte{}}
	var manifestFound, entryFound bool
	var entryPoint string

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rterr.IO("failed to read tar entry", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, rterr.IO("failed to read tar entry body", err)
		}

		name := strings.TrimPrefix(hdr.Name, "./")
		switch {
		case name == "manifest.json":
			if err := json.Unmarshal(data, &pkg.Manifest); err != nil {
				return nil, rterr.JSON("invalid manifest.json", err)
			}
			manifestFound = true
		case strings.HasPrefix(name, "baml_src/"):
			pkg.BamlSrc[name] = data
		default:
			if entryPoint != "" && name == entryPoint {
				pkg.ScriptCode = string(data)
				entryFound = true
			} else {
				// Defer entry-point matching until the manifest (which may
				// appear after other entries) has been read.
				pkg.BamlSrc[name] = data
			}
		}
	}

	if !manifestFound {
		return nil, rterr.InvalidArgument("package missing manifest.json")
	}
	if pkg.Manifest.Name == "" || pkg.Manifest.Version == "" {
		return nil, rterr.InvalidArgument("manifest.json missing name or version")
	}
	entryPoint = pkg.Manifest.EntryPoint
	if entryPoint == "" {
		entryPoint = defaultEntryPoint
	}
	if !entryFound {
		if data, ok := pkg.BamlSrc[entryPoint]; ok {
			pkg.ScriptCode = string(data)
			delete(pkg.BamlSrc, entryPoint)
			entryFound = true
		}
	}
	if !entryFound {
		return nil, rterr.InvalidArgument("package missing entry point: " + entryPoint)
	}

	return pkg, nil
}

// Write packages agentDir (expected to contain manifest.json, baml_src/,
// and the manifest's entry point) into a gzip+tar archive at outputPath.
func Write(agentDir, outputPath string) error {
	manifestPath := filepath.Join(agentDir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return rterr.IO("failed to read manifest.json", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return rterr.JSON("invalid manifest.json", err)
	}
	if manifest.Name == "" || manifest.Version == "" {
		return rterr.InvalidArgument("manifest.json missing name or version")
	}
	entryPoint := manifest.EntryPoint
	if entryPoint == "" {
		entryPoint = defaultEntryPoint
	}
	if _, err := os.Stat(filepath.Join(agentDir, entryPoint)); err != nil {
		return rterr.InvalidArgument("entry point not found: " + entryPoint)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return rterr.IO("failed to create output archive", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	return filepath.Walk(agentDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(agentDir, path)
		if err != nil {
			return err
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		hdr := &tar.Header{
			Name: filepath.ToSlash(rel),
			Mode: 0o644,
			Size: int64(len(body)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err = tw.Write(body)
		return err
	})
}

// Lint validates agentDir's shape without packaging it: manifest.json is
// present and valid, baml_src/ exists, and the entry point file exists.
func Lint(agentDir string) error {
	manifestPath := filepath.Join(agentDir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return rterr.IO("failed to read manifest.json", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return rterr.JSON("invalid manifest.json", err)
	}
	if manifest.Name == "" || manifest.Version == "" {
		return rterr.InvalidArgument("manifest.json missing name or version")
	}
	if info, err := os.Stat(filepath.Join(agentDir, "baml_src")); err != nil || !info.IsDir() {
		return rterr.InvalidArgument("missing baml_src/ directory")
	}
	entryPoint := manifest.EntryPoint
	if entryPoint == "" {
		entryPoint = defaultEntryPoint
	}
	if _, err := os.Stat(filepath.Join(agentDir, entryPoint)); err != nil {
		return rterr.InvalidArgument("entry point not found: " + entryPoint)
	}
	return nil
}
