package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")

	out := &bytes.Buffer{}
	cmd := newVersionCmd()
	cmd.SetOut(out)
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "mcpgate version 1.2.3\n", out.String())
}
