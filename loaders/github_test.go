package loaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobToRegexp(t *testing.T) {
	tests := []struct {
		glob    string
		path    string
		matches bool
	}{
		{"README.md", "README.md", true},
		{"README.md", "docs/README.md", false},
		{"*.md", "README.md", true},
		{"*.md", "docs/README.md", false},
		{"docs/**/*.md", "docs/guide/intro.md", true},
		{"docs/**/*.md", "docs/intro.md", true},
		{"docs/**/*.md", "src/intro.md", false},
		{"flows/**", "flows/etl/run.py", true},
		{"flows/**", "flows", false},
		{"**/__init__.py", "__init__.py", true},
		{"**/__init__.py", "pkg/sub/__init__.py", true},
		{"**/migrations/**/*", "app/migrations/0001_initial.py", true},
		{"**/migrations/**/*", "app/models.py", false},
		{"tests/**/*", "tests/unit/test_a.py", true},
		{"tests/**/*", "src/tests.py", false},
		{"flows-starter/*.py", "flows-starter/hello.py", true},
		{"flows-starter/*.py", "flows-starter/deep/hello.py", false},
	}

	for _, tt := range tests {
		globs, err := compileGlobs([]string{tt.glob})
		require.NoError(t, err, tt.glob)
		assert.Equal(t, tt.matches, globs[0].MatchString(tt.path),
			"glob %q against %q", tt.glob, tt.path)
	}
}

func TestGitHubRepoLoader_Keep(t *testing.T) {
	loader, err := NewGitHubRepoLoader("prefecthq/prefect",
		WithIncludeGlobs("flows/**", "README.md"),
		WithExcludeGlobs("tests/**/*", "**/__init__.py"),
	)
	require.NoError(t, err)

	assert.True(t, loader.keep("README.md"))
	assert.True(t, loader.keep("flows/etl/run.py"))
	assert.False(t, loader.keep("flows/etl/__init__.py"), "exclusion wins over inclusion")
	assert.False(t, loader.keep("tests/unit/test_run.py"))
	assert.False(t, loader.keep("src/main.py"), "not included")
}

func TestGitHubRepoLoader_KeepWithoutIncludes(t *testing.T) {
	loader, err := NewGitHubRepoLoader("owner/repo",
		WithExcludeGlobs("vendor/**/*"),
	)
	require.NoError(t, err)

	assert.True(t, loader.keep("main.go"))
	assert.False(t, loader.keep("vendor/lib/code.go"))
}

func TestNewGitHubRepoLoader_InvalidRepo(t *testing.T) {
	for _, repo := range []string{"", "norepo", "/repo", "owner/"} {
		_, err := NewGitHubRepoLoader(repo)
		assert.ErrorIs(t, err, ErrInvalidRepo, "repo %q", repo)
	}
}

func TestNewGitHubRepoLoader_InvalidGlob(t *testing.T) {
	_, err := NewGitHubRepoLoader("owner/repo", WithIncludeGlobs("a[b"))
	assert.Error(t, err)
}
