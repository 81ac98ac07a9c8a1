package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poem = "Rust:\nsafe, fast, productive.\nPick three.\nDuct tape.\n"

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, env map[string]string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	// Keep discovery away from the developer's real config files.
	if env == nil || env["HOME"] == "" {
		home := t.TempDir()
		lookup = func(key string) (string, bool) {
			if key == "HOME" {
				return home, true
			}
			v, ok := env[key]
			return v, ok
		}
	}
	code := run(args, &stdout, &stderr, lookup)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poem.txt")
	writeFile(t, path, poem)

	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		wantCode int
		wantOut  string
	}{
		{
			name:     "case sensitive literal",
			args:     []string{"duct", path},
			wantCode: ExitMatch,
			wantOut:  "2:safe, fast, productive.\n",
		},
		{
			name:     "ignore case flag",
			args:     []string{"-i", "duct", path},
			wantCode: ExitMatch,
			wantOut:  "2:safe, fast, productive.\n4:Duct tape.\n",
		},
		{
			name:     "legacy environment variable",
			args:     []string{"DUCT", path},
			env:      map[string]string{"CASE_INSENSITIVE": "1"},
			wantCode: ExitMatch,
			wantOut:  "2:safe, fast, productive.\n4:Duct tape.\n",
		},
		{
			name:     "flag overrides environment",
			args:     []string{"--ignore-case=false", "DUCT", path},
			env:      map[string]string{"MINIGREP_IGNORE_CASE": "true"},
			wantCode: ExitNoMatch,
			wantOut:  "",
		},
		{
			name:     "context lines",
			args:     []string{"--context=1", "three", path},
			wantCode: ExitMatch,
			wantOut:  "2~safe, fast, productive.\n3:Pick three.\n4~Duct tape.\n",
		},
		{
			name:     "bare context flag",
			args:     []string{"-c", "Rust", path},
			wantCode: ExitMatch,
			wantOut:  "1:Rust:\n2~safe, fast, productive.\n3~Pick three.\n",
		},
		{
			name:     "regex with separator",
			args:     []string{"-x", `^(Rust|Duct)`, path},
			wantCode: ExitMatch,
			wantOut:  "1:Rust:\n--\n4:Duct tape.\n",
		},
		{
			name:     "no match",
			args:     []string{"monad", path},
			wantCode: ExitNoMatch,
			wantOut:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.env, tt.args...)
			assert.Equal(t, tt.wantCode, res.code, res.stderr)
			assert.Equal(t, tt.wantOut, res.stdout)
		})
	}
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poem.txt")
	writeFile(t, path, poem)

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"invalid regex", []string{"-x", "[", path}, "invalid pattern"},
		{"missing file", []string{"x", filepath.Join(dir, "missing.txt")}, "missing.txt"},
		{"directory without recursion", []string{"x", dir}, "not a file"},
		{"missing query", nil, "missing query"},
		{"missing path", []string{"x"}, "missing file path"},
		{"negative context", []string{"--context=-1", "x", path}, "context must be >= 0"},
		{"bad color", []string{"--color", "rainbow", "x", path}, "invalid color"},
		{"unknown flag", []string{"--frobnicate", "x", path}, "unknown flag"},
		{"too many args", []string{"a", "b", "c"}, "accepts at most 2 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, nil, tt.args...)
			assert.Equal(t, ExitError, res.code)
			assert.Contains(t, res.stderr, "minigrep: ")
			assert.Contains(t, res.stderr, tt.wantStderr)
			assert.Empty(t, res.stdout)
		})
	}
}

func TestRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "needle one\nhay")
	writeFile(t, filepath.Join(root, "b.txt"), "hay")
	writeFile(t, filepath.Join(root, "sub", "c.txt"), "x\nneedle two")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "needle")
	writeFile(t, filepath.Join(root, "target", "out.txt"), "needle")
	writeFile(t, filepath.Join(root, "notes.log"), "needle")

	res := runCLI(t, nil, "-r", "--exclude", "*.log", "needle", root)
	require.Equal(t, ExitMatch, res.code, res.stderr)

	want := "File: " + filepath.Join(root, "a.txt") + "\n1:needle one\n" +
		"\n" +
		"File: " + filepath.Join(root, "sub", "c.txt") + "\n2:needle two\n"
	assert.Equal(t, want, res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRecursiveWarnsOnUnreadableFile(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(bin, []byte{0xff, 0xfe}, 0644))

	// An explicitly named file is always searched, so the decode failure
	// surfaces as a warning rather than a fatal error.
	res := runCLI(t, nil, "-r", "x", bin)
	assert.Equal(t, ExitNoMatch, res.code)
	assert.Contains(t, res.stderr, "warning:")
	assert.Contains(t, res.stderr, bin)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poem.txt")
	writeFile(t, path, poem)

	cfgPath := filepath.Join(dir, "minigrep.yaml")
	writeFile(t, cfgPath, "ignore_case: true\ncontext: 1\n")

	res := runCLI(t, nil, "--config", cfgPath, "RUST", path)
	require.Equal(t, ExitMatch, res.code, res.stderr)
	assert.Equal(t, "1:Rust:\n2~safe, fast, productive.\n", res.stdout)

	res = runCLI(t, map[string]string{"MINIGREP_CONFIG": cfgPath}, "--context=0", "RUST", path)
	require.Equal(t, ExitMatch, res.code, res.stderr)
	assert.Equal(t, "1:Rust:\n", res.stdout)

	res = runCLI(t, nil, "--config", filepath.Join(dir, "missing.yaml"), "x", path)
	assert.Equal(t, ExitError, res.code)
}

func TestJSONOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poem.txt")
	writeFile(t, path, poem)

	res := runCLI(t, nil, "--json", "three", path)
	require.Equal(t, ExitMatch, res.code, res.stderr)
	assert.JSONEq(t, `{"path":"`+path+`","records":[{"line":3,"text":"Pick three.","match":true}]}`, res.stdout)
}

func TestDebugPrintsStages(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "needle")

	res := runCLI(t, nil, "--debug", "-r", "needle", root)
	require.Equal(t, ExitMatch, res.code, res.stderr)
	assert.Contains(t, res.stderr, "[DEBUG]")
	assert.Contains(t, res.stderr, "walk:")
	assert.Contains(t, res.stderr, "search:")
	assert.Contains(t, res.stderr, "render:")
}

func TestHelp(t *testing.T) {
	res := runCLI(t, nil, "--help")
	assert.Equal(t, ExitMatch, res.code)
	assert.Contains(t, res.stdout, "--ignore-case")
	assert.Contains(t, res.stdout, "--context")
}
