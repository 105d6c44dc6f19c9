package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/liberioai/dossier/internal/workflows"
)

const deployDoc = `---
schema_version: "1.0.0"
title: Deploy
version: "1.2.0"
status: stable
objective: Deploy a service
inputs:
  required:
    - name: service
      description: Service to deploy
---
# Deploy

Roll out the service.
`

const brokenDoc = `---
title: Broken
inputs: [service]
---
body
`

// writeTree creates files under a temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// runCLI executes the root command with an isolated config and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "config.yaml")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListJSON(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"workflows/deploy.ds.md":     deployDoc,
		"workflows/ops/broken.ds.md": brokenDoc,
		"workflows/notes.md":         "ignored",
	})

	out, err := runCLI(t, "list", "--json", "--local", dir)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}

	var got toolsJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got.Tools) != 1 || got.Tools[0].Name != "deploy" {
		t.Fatalf("tools = %+v", got.Tools)
	}
	if got.Tools[0].Description != "Deploy a service" {
		t.Errorf("description = %q", got.Tools[0].Description)
	}
	if len(got.Skipped) != 1 || got.Skipped[0].Name != "broken" || got.Skipped[0].Reason != "metadata" {
		t.Errorf("skipped = %+v", got.Skipped)
	}
}

func TestListMatch(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"workflows/deploy.ds.md":     deployDoc,
		"workflows/ops/broken.ds.md": brokenDoc,
	})

	out, err := runCLI(t, "list", "--json", "--match", "dep*", "--local", dir)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	var got toolsJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got.Tools) != 1 || len(got.Skipped) != 0 {
		t.Errorf("filtered output = %+v", got)
	}

	if _, err := runCLI(t, "list", "--match", "[", "--local", dir); err == nil {
		t.Error("expected error for invalid glob")
	}
}

func TestInvoke(t *testing.T) {
	dir := writeTree(t, map[string]string{"workflows/deploy.ds.md": deployDoc})

	out, err := runCLI(t, "invoke", "deploy", "--no-prompt", "--arg", "service=api", "--arg", "env=prod", "--local", dir)
	if err != nil {
		t.Fatalf("invoke error: %v", err)
	}
	want := "## Provided Arguments\n\n- **env**: prod\n- **service**: api\n\n---\n\n# Deploy\n\nRoll out the service.\n"
	if out != want {
		t.Errorf("invoke output:\n%q\nwant:\n%q", out, want)
	}
}

func TestInvokeNotFound(t *testing.T) {
	dir := writeTree(t, map[string]string{"workflows/deploy.ds.md": deployDoc})

	_, err := runCLI(t, "invoke", "nope", "--no-prompt", "--local", dir)
	if err == nil || err.Error() != "Workflow not found: nope" {
		t.Fatalf("invoke error = %v", err)
	}
}

func TestShowRaw(t *testing.T) {
	dir := writeTree(t, map[string]string{"workflows/deploy.ds.md": deployDoc})

	out, err := runCLI(t, "show", "deploy", "--raw", "--local", dir)
	if err != nil {
		t.Fatalf("show error: %v", err)
	}
	if out != deployDoc {
		t.Errorf("show --raw = %q", out)
	}
}

func TestShowJSON(t *testing.T) {
	dir := writeTree(t, map[string]string{"workflows/deploy.ds.md": deployDoc})

	out, err := runCLI(t, "show", "deploy", "--json", "--local", dir)
	if err != nil {
		t.Fatalf("show error: %v", err)
	}
	var got struct {
		Name     string         `json:"name"`
		Path     string         `json:"path"`
		Metadata map[string]any `json:"metadata"`
		Body     string         `json:"body"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Name != "deploy" || got.Path != "workflows/deploy.ds.md" || got.Metadata["status"] != "stable" {
		t.Errorf("show --json = %+v", got)
	}
}

func TestValidateCmd(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"schema.json": string(workflows.DefaultSchema()),
		"good.ds.md":  deployDoc,
		"bad.ds.md":   brokenDoc,
	})
	schema := filepath.Join(dir, "schema.json")

	out, err := runCLI(t, "validate", "--schema", schema, filepath.Join(dir, "good.ds.md"))
	if err != nil {
		t.Fatalf("validate good: %v", err)
	}
	if !strings.Contains(out, "OK: ") {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, "validate", "--schema", schema, filepath.Join(dir, "good.ds.md"), filepath.Join(dir, "bad.ds.md"))
	if !errors.Is(err, errReported) {
		t.Fatalf("validate bad error = %v, want errReported", err)
	}
	if !strings.Contains(out, "FAIL: ") || !strings.Contains(out, "Schema validation error") {
		t.Errorf("output = %q", out)
	}

	if _, err := runCLI(t, "validate", "--schema", filepath.Join(dir, "missing.json"), filepath.Join(dir, "good.ds.md")); err == nil || errors.Is(err, errReported) {
		t.Errorf("missing schema error = %v", err)
	}
}

func TestValidateStrict(t *testing.T) {
	doc := strings.Replace(deployDoc, `version: "1.2.0"`, `version: "v1"`, 1)
	dir := writeTree(t, map[string]string{
		"schema.json": string(workflows.DefaultSchema()),
		"loose.ds.md": doc,
	})
	schema := filepath.Join(dir, "schema.json")
	file := filepath.Join(dir, "loose.ds.md")

	if _, err := runCLI(t, "validate", "--schema", schema, file); err != nil {
		t.Fatalf("non-strict validate: %v", err)
	}
	out, err := runCLI(t, "validate", "--strict", "--json", "--schema", schema, file)
	if !errors.Is(err, errReported) {
		t.Fatalf("strict validate error = %v", err)
	}
	var reports []validationReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(reports) != 1 || reports[0].Valid || len(reports[0].Errors) == 0 {
		t.Errorf("reports = %+v", reports)
	}
}

func TestReadmeCmd(t *testing.T) {
	dir := writeTree(t, map[string]string{"ops/deploy.ds.md": deployDoc})

	if _, err := runCLI(t, "readme", "--dir", dir); err != nil {
		t.Fatalf("readme error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ops", "README.md")); err != nil {
		t.Fatalf("category README not written: %v", err)
	}
	if _, err := runCLI(t, "readme", "--dir", dir, "--check"); err != nil {
		t.Fatalf("readme --check after generate: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("stale\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "readme", "--dir", dir, "--check")
	if !errors.Is(err, errReported) {
		t.Fatalf("readme --check error = %v", err)
	}
	if !strings.Contains(out, "out of sync") {
		t.Errorf("output = %q", out)
	}
}

func TestParseArgFlags(t *testing.T) {
	values := map[string]any{"env": "dev"}
	if err := parseArgFlags([]string{"env=prod", "query=a=b", "empty="}, values); err != nil {
		t.Fatalf("parseArgFlags() error: %v", err)
	}
	if values["env"] != "prod" || values["query"] != "a=b" || values["empty"] != "" {
		t.Errorf("values = %v", values)
	}

	for _, bad := range []string{"novalue", "=x"} {
		if err := parseArgFlags([]string{bad}, map[string]any{}); err == nil {
			t.Errorf("parseArgFlags(%q) expected error", bad)
		}
	}
}

func TestDecodeArgs(t *testing.T) {
	values, err := decodeArgs(strings.NewReader(`{"replicas": 3, "tags": ["a"]}`))
	if err != nil {
		t.Fatalf("decodeArgs() error: %v", err)
	}
	if n, ok := values["replicas"].(json.Number); !ok || n.String() != "3" {
		t.Errorf("replicas = %#v", values["replicas"])
	}

	if values, err := decodeArgs(strings.NewReader("")); err != nil || len(values) != 0 {
		t.Errorf("empty input = %v, %v", values, err)
	}
	if values, err := decodeArgs(strings.NewReader("null")); err != nil || values == nil {
		t.Errorf("null input = %v, %v", values, err)
	}
	if _, err := decodeArgs(strings.NewReader("[1]")); err == nil {
		t.Error("expected error for non-object JSON")
	}
}

func TestMissingInputs(t *testing.T) {
	required := []workflows.InputSpec{{Name: "service"}, {Name: "env"}}
	missing := missingInputs(required, map[string]any{"service": "api"})
	if len(missing) != 1 || missing[0].Name != "env" {
		t.Errorf("missingInputs() = %+v", missing)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q", got)
	}
}

func TestEnvFile(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"workflows/deploy.ds.md": deployDoc,
		".env":                   "DOSSIER_TEST_TOKEN=from-file\n",
	})
	t.Setenv("DOSSIER_TEST_TOKEN", "")
	os.Unsetenv("DOSSIER_TEST_TOKEN")

	if _, err := runCLI(t, "list", "--json", "--local", dir, "--env-file", filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if got := os.Getenv("DOSSIER_TEST_TOKEN"); got != "from-file" {
		t.Errorf("DOSSIER_TEST_TOKEN = %q, want from-file", got)
	}

	if _, err := runCLI(t, "list", "--local", dir, "--env-file", filepath.Join(dir, "missing.env")); err == nil {
		t.Error("expected error for missing env file")
	}
}
