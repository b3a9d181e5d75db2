package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/compozy/changelog/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// RenderChangelogUseCase turns a changelog result into text.
type RenderChangelogUseCase struct{}

// Execute renders result in the given format.
func (uc *RenderChangelogUseCase) Execute(result *domain.ChangeLogResult, format string) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result cannot be nil")
	}
	switch strings.ToLower(format) {
	case "", FormatMarkdown:
		return uc.markdown(result)
	case FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode changelog as JSON: %w", err)
		}
		return string(data) + "\n", nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return "", fmt.Errorf("failed to encode changelog as YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("failed to encode changelog as YAML: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// sanitizeNotes HTML-escapes upstream notes but keeps the characters
// markdown needs. Angle brackets stay escaped except for blockquotes.
func sanitizeNotes(notes string) string {
	if notes == "" {
		return ""
	}
	lines := strings.Split(html.EscapeString(notes), "\n")
	unescape := strings.NewReplacer("&#34;", "\"", "&#39;", "'", "&amp;", "&")
	for i, line := range lines {
		if after, ok := strings.CutPrefix(line, "&gt; "); ok {
			line = "> " + after
		}
		lines[i] = unescape.Replace(line)
	}
	return strings.Join(lines, "\n")
}

type renderedRelease struct {
	Version string
	Date    string
	Compare string
	Notes   []string
}

func (uc *RenderChangelogUseCase) markdown(result *domain.ChangeLogResult) (string, error) {
	releases := make([]renderedRelease, 0, len(result.Versions))
	for _, v := range result.Versions {
		r := renderedRelease{
			Version: html.EscapeString(v.Version),
			Compare: v.CompareURL(),
		}
		if v.Date != nil {
			r.Date = v.Date.UTC().Format("2006-01-02")
		}
		for _, c := range v.Changes {
			r.Notes = append(r.Notes, sanitizeNotes(strings.TrimSpace(c.Body)))
		}
		releases = append(releases, r)
	}
	data := struct {
		Repository string
		Releases   []renderedRelease
	}{
		Repository: html.EscapeString(result.Project.Repository),
		Releases:   releases,
	}
	tmpl, err := template.New("changelog").Option("missingkey=error").Parse(changelogTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse changelog template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute changelog template: %w", err)
	}
	return buf.String(), nil
}

const changelogTemplate = `# {{.Repository}}
{{range .Releases}}
## {{if .Compare}}[{{.Version}}]({{.Compare}}){{else}}{{.Version}}{{end}}{{if .Date}} ({{.Date}}){{end}}
{{range .Notes}}
{{.}}
{{end}}{{end}}`
