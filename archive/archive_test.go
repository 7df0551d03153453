package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body))}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestReadValidPackage(t *testing.T) {
	manifest := `{"version":"1.0.0","name":"demo","entry_point":"dist/index.js","metadata":{"functions":["greet"]}}`
	data := writeTarGz(t, map[string]string{
		"manifest.json":        manifest,
		"baml_src/main.baml":   "function greet() {}",
		"dist/index.js":        "function handle_a2a_request(e) { return e; }",
	})

	pkg, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "demo", pkg.Manifest.Name)
	assert.Equal(t, "function handle_a2a_request(e) { return e; }", pkg.ScriptCode)
	assert.Contains(t, pkg.BamlSrc, "baml_src/main.baml")
	assert.NotContains(t, pkg.BamlSrc, "dist/index.js")
}

func TestReadDefaultsEntryPoint(t *testing.T) {
	manifest := `{"version":"1.0.0","name":"demo"}`
	data := writeTarGz(t, map[string]string{
		"manifest.json": manifest,
		"dist/index.js": "var x = 1;",
	})

	pkg, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "var x = 1;", pkg.ScriptCode)
}

func TestReadHandlesEntryPointBeforeManifestInTarOrder(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	entry := "dist/index.js"
	body := "var x = 2;"
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: entry, Mode: 0o644, Size: int64(len(body))}))
	_, err := tw.Write([]byte(body))
	require.NoError(t, err)

	manifest := `{"version":"1.0.0","name":"demo","entry_point":"dist/index.js"}`
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "manifest.json", Mode: 0o644, Size: int64(len(manifest))}))
	_, err = tw.Write([]byte(manifest))
	require.NoError(t, err)

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	pkg, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "var x = 2;", pkg.ScriptCode)
}

func TestReadRejectsMissingManifest(t *testing.T) {
	data := writeTarGz(t, map[string]string{"dist/index.js": "var x;"})
	_, err := Read(bytes.NewReader(data))
	require.Error(t, err)
}

func TestReadRejectsMissingEntryPoint(t *testing.T) {
	data := writeTarGz(t, map[string]string{
		"manifest.json": `{"version":"1.0.0","name":"demo"}`,
	})
	_, err := Read(bytes.NewReader(data))
	require.Error(t, err)
}

func TestLintAndWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	manifest := map[string]any{"version": "1.0.0", "name": "demo"}
	b, _ := json.Marshal(manifest)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), b, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "baml_src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "baml_src", "main.baml"), []byte("fn"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dist", "index.js"), []byte("var x;"), 0o644))

	require.NoError(t, Lint(dir))

	out := filepath.Join(t.TempDir(), "out.tar.gz")
	require.NoError(t, Write(dir, out))

	pkg, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, "demo", pkg.Manifest.Name)
	assert.Equal(t, "var x;", pkg.ScriptCode)
}

func TestLintRejectsMissingBamlSrc(t *testing.T) {
	dir := t.TempDir()
	b, _ := json.Marshal(map[string]any{"version": "1.0.0", "name": "demo"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), b, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dist.js"), []byte("x"), 0o644))

	err := Lint(dir)
	require.Error(t, err)
}
