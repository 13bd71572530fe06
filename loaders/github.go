// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package loaders

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/poiesic/lorecraft/core"
)

// GitHubRepoLoader walks a repository tree and loads matching files as
// documents.
type GitHubRepoLoader struct {
	client  *github.Client
	owner   string
	repo    string
	branch  string
	include []*regexp.Regexp
	exclude []*regexp.Regexp
	logger  *slog.Logger
}

// GitHubOption customizes a GitHubRepoLoader.
type GitHubOption func(*GitHubRepoLoader) error

// WithBranch sets the branch to load from. Defaults to "main".
func WithBranch(branch string) GitHubOption {
	return func(l *GitHubRepoLoader) error {
		l.branch = branch
		return nil
	}
}

// WithToken authenticates API requests. Unauthenticated requests are
// rate-limited aggressively by GitHub.
func WithToken(token string) GitHubOption {
	return func(l *GitHubRepoLoader) error {
		if token != "" {
			l.client = l.client.WithAuthToken(token)
		}
		return nil
	}
}

// WithGitHubClient replaces the API client, mainly for tests.
func WithGitHubClient(client *github.Client) GitHubOption {
	return func(l *GitHubRepoLoader) error {
		l.client = client
		return nil
	}
}

// WithIncludeGlobs keeps only files matching at least one glob.
// Globs use "*" for a path segment and "**" for any depth, so
// "docs/**/*.md" matches markdown anywhere under docs.
func WithIncludeGlobs(globs ...string) GitHubOption {
	return func(l *GitHubRepoLoader) error {
		compiled, err := compileGlobs(globs)
		if err != nil {
			return err
		}
		l.include = compiled
		return nil
	}
}

// WithExcludeGlobs drops files matching any glob. Exclusion wins over
// inclusion.
func WithExcludeGlobs(globs ...string) GitHubOption {
	return func(l *GitHubRepoLoader) error {
		compiled, err := compileGlobs(globs)
		if err != nil {
			return err
		}
		l.exclude = compiled
		return nil
	}
}

// NewGitHubRepoLoader creates a loader for "owner/name".
func NewGitHubRepoLoader(repo string, opts ...GitHubOption) (*GitHubRepoLoader, error) {
	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}

	loader := &GitHubRepoLoader{
		client: github.NewClient(nil),
		owner:  owner,
		repo:   name,
		branch: "main",
		logger: slog.Default().With("component", "loaders.github"),
	}
	for _, opt := range opts {
		if err := opt(loader); err != nil {
			return nil, err
		}
	}
	return loader, nil
}

// Load walks the branch tree recursively and fetches every matching
// blob. Files that fail to download are logged and skipped.
func (l *GitHubRepoLoader) Load(ctx context.Context) ([]*core.Document, error) {
	tree, _, err := l.client.Git.GetTree(ctx, l.owner, l.repo, l.branch, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for %s/%s: %w", l.owner, l.repo, err)
	}

	var docs []*core.Document
	for _, entry := range tree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.GetType() != "blob" {
			continue
		}

		path := entry.GetPath()
		if !l.keep(path) {
			continue
		}

		text, err := l.fileContent(ctx, path)
		if err != nil {
			l.logger.Warn("could not fetch file", "path", path, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		docs = append(docs, core.NewDocument(text, core.Metadata{
			Title:  path,
			Link:   fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", l.owner, l.repo, l.branch, path),
			Source: "github",
		}))
	}

	l.logger.Info("loaded repository files", "repo", l.owner+"/"+l.repo, "files", len(docs))
	return docs, nil
}

func (l *GitHubRepoLoader) fileContent(ctx context.Context, path string) (string, error) {
	content, _, _, err := l.client.Repositories.GetContents(ctx, l.owner, l.repo, path, &github.RepositoryContentGetOptions{
		Ref: l.branch,
	})
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return content.GetContent()
}

func (l *GitHubRepoLoader) keep(path string) bool {
	for _, glob := range l.exclude {
		if glob.MatchString(path) {
			return false
		}
	}
	if len(l.include) == 0 {
		return true
	}
	for _, glob := range l.include {
		if glob.MatchString(path) {
			return true
		}
	}
	return false
}

func compileGlobs(globs []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(globs))
	for _, glob := range globs {
		re, err := regexp.Compile(globToRegexp(glob))
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", glob, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// globToRegexp translates a path glob into an anchored regular
// expression. "**" crosses path separators, "*" and "?" do not.
func globToRegexp(glob string) string {
	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				i++
				// Collapse "**/" so it also matches zero directories.
				if i+1 < len(glob) && glob[i+1] == '/' {
					i++
					sb.WriteString(`(?:.*/)?`)
				} else {
					sb.WriteString(`.*`)
				}
			} else {
				sb.WriteString(`[^/]*`)
			}
		case '?':
			sb.WriteString(`[^/]`)
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
