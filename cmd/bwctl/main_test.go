package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFmtCommandReformatsRadix(t *testing.T) {
	out, err := runCmd(t, "fmt", "255_u8", "--radix", "16")
	require.NoError(t, err)
	assert.Equal(t, "0xff_u8", strings.TrimSpace(out))
}

func TestFmtCommandRejectsBadRadix(t *testing.T) {
	_, err := runCmd(t, "fmt", "255_u8", "--radix", "7")
	assert.Error(t, err)
}

func TestConcatCommandRunsProgram(t *testing.T) {
	out, err := runCmd(t, "concat", "a[0..4], 0xf:4", "--op", "a=0xab_u8", "--radix", "16")
	require.NoError(t, err)
	// a's low nibble (0xb) is most-significant in the concatenation, the
	// literal 0xf fills the low nibble: result is 0xbf.
	assert.Equal(t, "0xbf_u8", strings.TrimSpace(out))
}

func TestConcatCommandMissingOperand(t *testing.T) {
	_, err := runCmd(t, "concat", "a, b", "--op", "a=1_u4")
	assert.Error(t, err)
}

func TestEvalCommandArithmetic(t *testing.T) {
	out, err := runCmd(t, "eval", "3_u8 + 4_u8", "--radix", "10")
	require.NoError(t, err)
	assert.Equal(t, "7_u8", strings.TrimSpace(out))
}

func TestEvalCommandComparison(t *testing.T) {
	out, err := runCmd(t, "eval", "3_u8 != 4_u8", "--radix", "10")
	require.NoError(t, err)
	assert.Equal(t, "1_u1", strings.TrimSpace(out))
}
