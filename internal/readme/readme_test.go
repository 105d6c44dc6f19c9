package readme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func newTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "create-workflow.ds.md"), "---\ntitle: Create\n---\n")
	writeFile(t, filepath.Join(dir, "data-science", "train.ds.md"), "---\ntitle: Train\nobjective: Train a model\n---\n")
	writeFile(t, filepath.Join(dir, "data-science", "clean.ds.md"), "---\nobjective: Clean a dataset\n---\n")
	writeFile(t, filepath.Join(dir, "ops", "README.md"), "# Operations\n\n## Notes\n\nRunbooks for production. Keep them short.\n")
	writeFile(t, filepath.Join(dir, "ops", "restart.ds.md"), "---\nobjective: Restart a service\n---\n")
	writeFile(t, filepath.Join(dir, "empty", "notes.md"), "nothing here")
	return dir
}

func TestGenerate(t *testing.T) {
	dir := newTree(t)

	res, err := Generate(dir, false)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(res.Updated) != 3 {
		t.Errorf("Updated = %v, want two categories and the root", res.Updated)
	}

	wantDS := "# Data Science Workflows\n\n\n\n" +
		"## Available Workflows\n\n" +
		"| Workflow | Description |\n" +
		"|----------|-------------|\n" +
		"| [clean](./clean.ds.md) | Clean a dataset |\n" +
		"| [train](./train.ds.md) | Train a model |\n"
	if got := readFile(t, filepath.Join(dir, "data-science", "README.md")); got != wantDS {
		t.Errorf("data-science README =\n%q\nwant\n%q", got, wantDS)
	}

	ops := readFile(t, filepath.Join(dir, "ops", "README.md"))
	if !strings.HasPrefix(ops, "# Operations\n\nRunbooks for production. Keep them short.\n\n") {
		t.Errorf("ops README = %q", ops)
	}

	root := readFile(t, filepath.Join(dir, "README.md"))
	for _, want := range []string{
		"# Workflows\n",
		"| [data-science](./data-science/) |  |\n",
		"| [ops](./ops/) | Runbooks for production |\n",
	} {
		if !strings.Contains(root, want) {
			t.Errorf("root README missing %q:\n%s", want, root)
		}
	}
	if strings.Contains(root, "empty") {
		t.Errorf("root README should skip directories without workflows")
	}

	res, err = Generate(dir, false)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(res.Updated) != 0 {
		t.Errorf("second Generate() updated %v, want nothing", res.Updated)
	}
}

func TestGenerateCheck(t *testing.T) {
	dir := newTree(t)

	res, err := Generate(dir, true)
	if err != nil {
		t.Fatalf("Generate(check) error: %v", err)
	}
	if len(res.OutOfSync) != 3 || len(res.Updated) != 0 {
		t.Errorf("Generate(check) = %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "README.md")); !os.IsNotExist(err) {
		t.Errorf("check mode should not write files")
	}

	if _, err := Generate(dir, false); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	res, err = Generate(dir, true)
	if err != nil {
		t.Fatalf("Generate(check) error: %v", err)
	}
	if len(res.OutOfSync) != 0 {
		t.Errorf("OutOfSync = %v after regenerating", res.OutOfSync)
	}
}

func TestCollectWorkflowsTitleFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.ds.md"), "# no frontmatter\n")
	writeFile(t, filepath.Join(dir, "a.ds.md"), "---\ntitle: Alpha\n---\n")

	got, err := CollectWorkflows(dir)
	if err != nil {
		t.Fatalf("CollectWorkflows() error: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Alpha" || got[1].Title != "b" || got[1].Objective != "" {
		t.Errorf("CollectWorkflows() = %+v", got)
	}
}

func TestReadmeHeader(t *testing.T) {
	title, long := readmeHeader("Intro\n# Heading\n### sub\n\n  First line. Second.  \n")
	if title != "" {
		t.Errorf("title = %q, want empty when first line is not a heading", title)
	}
	if long != "First line. Second." {
		t.Errorf("long = %q", long)
	}
}
