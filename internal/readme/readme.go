// Package readme generates the README index files of a workflows directory
// from workflow frontmatter.
package readme

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/liberioai/dossier/internal/workflows"
)

// Entry is one workflow row in a category README.
type Entry struct {
	Name      string
	Title     string
	Objective string
}

// Category is a workflows subdirectory that contains workflow documents.
type Category struct {
	Name       string
	Title      string
	LongDesc   string
	ShortDesc  string
	Workflows  []Entry
	ReadmePath string
}

// CollectWorkflows reads every *.ds.md file directly inside dir, sorted by
// file name.
func CollectWorkflows(dir string) ([]Entry, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+workflows.Suffix))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		doc, err := workflows.ParseFrontmatter(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		name, _ := workflows.NameFromFile(filepath.Base(f))
		entries = append(entries, Entry{
			Name:      name,
			Title:     metaString(doc.Metadata, "title", name),
			Objective: metaString(doc.Metadata, "objective", ""),
		})
	}
	return entries, nil
}

func metaString(meta map[string]any, key, fallback string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// LoadCategory describes the category at dir. It returns nil when dir holds
// no workflows.
func LoadCategory(dir string) (*Category, error) {
	wfs, err := CollectWorkflows(dir)
	if err != nil {
		return nil, err
	}
	if len(wfs) == 0 {
		return nil, nil
	}

	name := filepath.Base(dir)
	c := &Category{
		Name:       name,
		Title:      cases.Title(language.English).String(strings.ReplaceAll(name, "-", " ")) + " Workflows",
		Workflows:  wfs,
		ReadmePath: filepath.Join(dir, "README.md"),
	}

	if data, err := os.ReadFile(c.ReadmePath); err == nil {
		title, long := readmeHeader(string(data))
		if title != "" {
			c.Title = title
		}
		c.LongDesc = long
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	c.ShortDesc, _, _ = strings.Cut(c.LongDesc, ".")
	return c, nil
}

// readmeHeader returns the title from a leading "# " line and the first
// non-empty line after the first "# " line that is neither a heading nor a
// table row.
func readmeHeader(content string) (title, long string) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "# ") {
		title = lines[0][2:]
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "# ") {
			continue
		}
		for _, next := range lines[i+1:] {
			trimmed := strings.TrimSpace(next)
			if trimmed != "" && !strings.HasPrefix(next, "#") && !strings.HasPrefix(trimmed, "|") {
				long = trimmed
				break
			}
		}
		break
	}
	return title, long
}

// CategoryReadme renders a category README.
func CategoryReadme(title, description string, wfs []Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", title, description)
	b.WriteString("## Available Workflows\n\n")
	b.WriteString("| Workflow | Description |\n")
	b.WriteString("|----------|-------------|\n")
	for _, w := range wfs {
		fmt.Fprintf(&b, "| [%s](./%s%s) | %s |\n", w.Name, w.Name, workflows.Suffix, w.Objective)
	}
	return b.String()
}

// RootReadme renders the index README of the workflows directory.
func RootReadme(categories []Category) string {
	var b strings.Builder
	b.WriteString("# Workflows\n\n")
	b.WriteString("Step-by-step instructions for AI agents to complete tasks.\n\n")
	b.WriteString("## Getting Started\n\n")
	b.WriteString("Use [create-workflow](./create-workflow.ds.md) to create new workflows that pass validation.\n\n")
	b.WriteString("## Categories\n\n")
	b.WriteString("| Category | Description |\n")
	b.WriteString("|----------|-------------|\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "| [%s](./%s/) | %s |\n", c.Name, c.Name, c.ShortDesc)
	}
	return b.String()
}

// Result lists the files Generate wrote or found stale.
type Result struct {
	Updated   []string
	OutOfSync []string
}

// Generate regenerates every category README and the root README under
// dir. With check set nothing is written and stale files are reported in
// OutOfSync instead.
func Generate(dir string, check bool) (Result, error) {
	var res Result

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return res, err
	}

	var categories []Category
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		c, err := LoadCategory(filepath.Join(dir, d.Name()))
		if err != nil {
			return res, err
		}
		if c != nil {
			categories = append(categories, *c)
		}
	}

	for _, c := range categories {
		if err := writeIfChanged(c.ReadmePath, CategoryReadme(c.Title, c.LongDesc, c.Workflows), check, &res); err != nil {
			return res, err
		}
	}
	if err := writeIfChanged(filepath.Join(dir, "README.md"), RootReadme(categories), check, &res); err != nil {
		return res, err
	}
	return res, nil
}

func writeIfChanged(path, content string, check bool, res *Result) error {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, []byte(content)) {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if check {
		res.OutOfSync = append(res.OutOfSync, path)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	res.Updated = append(res.Updated, path)
	return nil
}
