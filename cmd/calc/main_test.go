package main

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	if args == nil {
		// nil makes cobra fall back to os.Args
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSessionFromStdin(t *testing.T) {
	out, err := execute(t, "2+3*4\nquit\n")
	require.NoError(t, err)
	assert.Equal(t, "input: output: 14\n\ninput: User quit. \nGoodbye!\n", out)
}

func TestSessionFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("10-3-2\n5/0\n"), 0o644))

	out, err := execute(t, "", path)
	require.NoError(t, err)
	assert.Equal(t, "input: 10-3-2\noutput: 5\n\n"+
		"input: 5/0\nComputational Error: Divide by zero\n\n"+
		"input: End of input file reached.\nGoodbye!\n", out)
}

func TestSessionMissingFile(t *testing.T) {
	out, err := execute(t, "", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Equal(t, "Problem with input file.\nPlease check file and try again.\n", out)
}

func TestGenerateToStdout(t *testing.T) {
	first, err := execute(t, "", "generate", "-", "--count", "5", "--seed", "3")
	require.NoError(t, err)
	second, err := execute(t, "", "generate", "-", "--count", "5", "--seed", "3")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, strings.Split(strings.TrimSpace(first), "\n"), 5)
}

func TestGenerateAndEval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.txt")
	out, err := execute(t, "", "generate", path, "--count", "4", "--seed", "9", "--eval")
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "input: "))
	assert.True(t, strings.HasSuffix(out, "End of input file reached.\nGoodbye!\n"))
}

func TestTokenizeCommand(t *testing.T) {
	out, err := execute(t, "", "tokenize", "2", "^", "(1.5)")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "POS")
	assert.Contains(t, lines[3], "LPAREN")
	assert.Contains(t, lines[4], "NUMBER")
	assert.Contains(t, lines[4], "1.5")
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("CALC_TEST_VALUE", "x")
	assert.Equal(t, "x", envOrDefault("CALC_TEST_VALUE", "y"))
	assert.Equal(t, "y", envOrDefault("CALC_TEST_UNSET", "y"))
}

func TestServeReturnsListenErrors(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	t.Run("grpc port in use", func(t *testing.T) {
		_, err := execute(t, "", "serve", "--host", "127.0.0.1", "--port", "0", "--grpc-port", busyPort)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "grpc listen")
	})

	t.Run("http port in use", func(t *testing.T) {
		_, err := execute(t, "", "serve", "--host", "127.0.0.1", "--port", busyPort, "--grpc-port", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http server")
	})
}
