package main

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     name,
		Mode:     0o755,
		Size:     int64(len(content)),
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func newReleaseServer(t *testing.T, archive []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func hostAssetName(t *testing.T) string {
	t.Helper()
	name, err := mermaidASCIIAssetName(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("mermaid-ascii has no release for %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	return name
}

func TestInstallMermaidASCII(t *testing.T) {
	asset := hostAssetName(t)
	archive := buildTarGz(t, "mermaid-ascii_1.1.0/mermaid-ascii", []byte("#!/bin/sh\ncat\n"))
	sum := sha256.Sum256(archive)
	srv := newReleaseServer(t, archive)

	binDir := filepath.Join(t.TempDir(), "bin")
	var out bytes.Buffer
	inst := &toolInstaller{
		client:    srv.Client(),
		baseURL:   srv.URL,
		binDir:    binDir,
		checksums: map[string]string{asset: hex.EncodeToString(sum[:])},
		out:       &out,
	}
	require.NoError(t, inst.installMermaidASCII(context.Background()))

	info, err := os.Stat(filepath.Join(binDir, "mermaid-ascii"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "binary should be executable")
	assert.Contains(t, out.String(), "mermaid-ascii installed to")

	// Second run is a no-op.
	out.Reset()
	require.NoError(t, inst.installMermaidASCII(context.Background()))
	assert.Contains(t, out.String(), "already installed")
}

func TestInstallMermaidASCII_ChecksumMismatch(t *testing.T) {
	asset := hostAssetName(t)
	srv := newReleaseServer(t, buildTarGz(t, "mermaid-ascii", []byte("x")))

	binDir := t.TempDir()
	inst := &toolInstaller{
		client:    srv.Client(),
		baseURL:   srv.URL,
		binDir:    binDir,
		checksums: map[string]string{asset: "0000000000000000000000000000000000000000000000000000000000000000"},
		out:       io.Discard,
	}
	err := inst.installMermaidASCII(context.Background())
	assert.ErrorIs(t, err, errChecksumMismatch)

	_, statErr := os.Stat(filepath.Join(binDir, "mermaid-ascii"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInstallMermaidASCII_UnknownChecksum(t *testing.T) {
	hostAssetName(t)
	inst := &toolInstaller{binDir: t.TempDir(), checksums: map[string]string{}, out: io.Discard}
	assert.ErrorContains(t, inst.installMermaidASCII(context.Background()), "no known checksum")
}

func TestMermaidASCIIAssetName(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "mermaid-ascii_Linux_x86_64.tar.gz", false},
		{"darwin", "arm64", "mermaid-ascii_Darwin_arm64.tar.gz", false},
		{"linux", "386", "mermaid-ascii_Linux_i386.tar.gz", false},
		{"windows", "amd64", "", true},
		{"linux", "riscv64", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := mermaidASCIIAssetName(tt.goos, tt.goarch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTarGz_NotFound(t *testing.T) {
	archive := buildTarGz(t, "README.md", []byte("hi"))
	err := extractTarGz(bytes.NewReader(archive), t.TempDir(), "mermaid-ascii")
	assert.ErrorContains(t, err, "not found in archive")
}
