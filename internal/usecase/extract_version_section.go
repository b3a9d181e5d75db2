package usecase

import (
	"regexp"
	"strings"
)

var (
	atxHeading = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)[ \t#]*$`)
	linkTarget = regexp.MustCompile(`\]\([^)]*\)`)
)

// ExtractVersionSection returns the body under the markdown heading naming
// version, up to the next heading of the same or a higher level. Headings
// such as "## 1.2.0", "## [v1.2.0](link) (2024-01-01)" and "# Release 1.2.0"
// all match. Link targets are ignored so compare links naming the previous
// version do not match. It returns false when no heading names version.
func ExtractVersionSection(markdown, version string) (string, bool) {
	if version == "" {
		return "", false
	}
	versionToken := regexp.MustCompile(
		`(^|[^0-9A-Za-z.])v?` + regexp.QuoteMeta(strings.TrimPrefix(version, "v")) + `($|[^0-9A-Za-z.+-])`,
	)
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	start, level := -1, 0
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		m := atxHeading.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if start >= 0 {
			if len(m[1]) <= level {
				return strings.TrimSpace(strings.Join(lines[start:i], "\n")), true
			}
			continue
		}
		if versionToken.MatchString(linkTarget.ReplaceAllString(m[2], "]")) {
			start, level = i+1, len(m[1])
		}
	}
	if start < 0 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n")), true
}
