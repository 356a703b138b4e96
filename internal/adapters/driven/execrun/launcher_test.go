package execrun

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommandRejectsEmpty(t *testing.T) {
	l := NewLauncher()

	assert.Error(t, l.RunCommand(context.Background(), ""))
	assert.Error(t, l.RunCommand(context.Background(), "   "))
}

func TestRunCommandRejectsUnbalancedQuotes(t *testing.T) {
	l := NewLauncher()

	assert.Error(t, l.RunCommand(context.Background(), `echo "unterminated`))
}

func TestRunCommandStartsProcess(t *testing.T) {
	l := NewLauncher()

	require.NoError(t, l.RunCommand(context.Background(), "true"))
}

func TestRunCommandMissingBinary(t *testing.T) {
	l := NewLauncher()

	assert.Error(t, l.RunCommand(context.Background(), "zephyr-no-such-binary-xyz"))
}
