package trigger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FromEnvironment builds a Context from the GitHub Actions environment.
//
// The event name comes from GITHUB_EVENT_NAME and the ref from GITHUB_REF.
// The repository default branch is resolved from the event payload
// (GITHUB_EVENT_PATH), then GITHUB_DEFAULT_BRANCH, then fallbackDefaultBranch.
func FromEnvironment(fallbackDefaultBranch string) (Context, error) {
	kind, err := ParseEventKind(strings.TrimSpace(os.Getenv("GITHUB_EVENT_NAME")))
	if err != nil {
		return Context{}, fmt.Errorf("GITHUB_EVENT_NAME: %w", err)
	}

	ref := strings.TrimSpace(os.Getenv("GITHUB_REF"))
	branch := BranchFromRef(ref)

	defaultBranch := defaultBranchFromPayload(os.Getenv("GITHUB_EVENT_PATH"))
	if defaultBranch == "" {
		defaultBranch = strings.TrimSpace(os.Getenv("GITHUB_DEFAULT_BRANCH"))
	}
	if defaultBranch == "" {
		defaultBranch = fallbackDefaultBranch
	}

	return Context{
		EventKind:       kind,
		BranchRef:       ref,
		IsDefaultBranch: branch != "" && branch == defaultBranch,
	}, nil
}

// BranchFromRef strips the refs/heads/ prefix from a git ref.
// Non-branch refs (tags, PR merge refs) are returned empty.
func BranchFromRef(ref string) string {
	if branch, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
		return branch
	}
	return ""
}

// defaultBranchFromPayload reads repository.default_branch from the webhook
// payload file. Returns "" when the file or field is absent.
func defaultBranchFromPayload(path string) string {
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var payload struct {
		Repository struct {
			DefaultBranch string `json:"default_branch"`
		} `json:"repository"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}

	return payload.Repository.DefaultBranch
}
