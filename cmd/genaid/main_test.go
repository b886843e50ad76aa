package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genaid/internal/config"
)

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte("addr: :7000\nstorage_dir: /from/file\nlog_level: debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := resolveConfig(serveFlags{config: p, storageDir: "/from/flag", cors: "http://a, http://b"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.StorageDir != "/from/flag" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !cfg.CORSEnabled || len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors not applied: %+v", cfg)
	}
	if cfg.MaxBodyBytes != config.Default().MaxBodyBytes {
		t.Fatalf("defaults not merged: %+v", cfg)
	}
}

func TestResolveConfig_MissingFile(t *testing.T) {
	if _, err := resolveConfig(serveFlags{config: "/nope/genaid.yaml"}); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "genaid ") {
		t.Fatalf("output=%q", out.String())
	}
}
