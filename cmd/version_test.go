package cmd

import (
	"bytes"
	"testing"

	"github.com/compozy/changelog/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	t.Run("Should print build information", func(t *testing.T) {
		cmd := newVersionCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "Version:\t"+version.Version)
		assert.Contains(t, out.String(), "Commit:\t")
	})
	t.Run("Should fall back for blank values", func(t *testing.T) {
		assert.Equal(t, "dev", safeValue("  ", "dev"))
		assert.Equal(t, "1.0.0", safeValue(" 1.0.0 ", "dev"))
	})
}
