package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const keepAChangelog = `# Changelog

All notable changes to this project will be documented in this file.

## [Unreleased]

## [1.1.0](https://example.com/compare/v1.0.0...v1.1.0) (2024-02-01)

### Features

* add the thing

` + "```" + `
# not a heading
` + "```" + `

## [1.0.0] - 2024-01-01

### Fixed

- first fix

# 0.9.0

old
`

func TestExtractVersionSection(t *testing.T) {
	t.Run("Should extract the section including sub headings", func(t *testing.T) {
		section, ok := ExtractVersionSection(keepAChangelog, "1.1.0")
		assert.True(t, ok)
		assert.Equal(t, "### Features\n\n* add the thing\n\n```\n# not a heading\n```", section)
	})
	t.Run("Should ignore versions named in link targets", func(t *testing.T) {
		section, ok := ExtractVersionSection(keepAChangelog, "1.0.0")
		assert.True(t, ok)
		assert.Equal(t, "### Fixed\n\n- first fix", section)
	})
	t.Run("Should read to the end of the document", func(t *testing.T) {
		section, ok := ExtractVersionSection(keepAChangelog, "0.9.0")
		assert.True(t, ok)
		assert.Equal(t, "old", section)
	})
	t.Run("Should accept a v prefix on either side", func(t *testing.T) {
		section, ok := ExtractVersionSection("## v2.0.0\nbreaking\n## v1.0.0\n", "2.0.0")
		assert.True(t, ok)
		assert.Equal(t, "breaking", section)
		section, ok = ExtractVersionSection("## 2.0.0\nbreaking\n", "v2.0.0")
		assert.True(t, ok)
		assert.Equal(t, "breaking", section)
	})
	t.Run("Should not match prereleases or longer versions", func(t *testing.T) {
		_, ok := ExtractVersionSection("## 1.0.0-rc.1\nrc\n## 11.0.0\nx\n## 1.0.0.1\ny\n", "1.0.0")
		assert.False(t, ok)
	})
	t.Run("Should report missing versions", func(t *testing.T) {
		_, ok := ExtractVersionSection(keepAChangelog, "3.0.0")
		assert.False(t, ok)
		_, ok = ExtractVersionSection(keepAChangelog, "")
		assert.False(t, ok)
	})
	t.Run("Should handle windows line endings", func(t *testing.T) {
		section, ok := ExtractVersionSection("## 1.0.0\r\n- a\r\n## 0.1.0\r\n", "1.0.0")
		assert.True(t, ok)
		assert.Equal(t, "- a", section)
	})
}
