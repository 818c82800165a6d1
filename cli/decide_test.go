package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/reenignearcher/pagegate/trigger"
)

func runDecide(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newDecideCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func clearEventEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_EVENT_NAME", "GITHUB_REF", "GITHUB_EVENT_PATH", "GITHUB_DEFAULT_BRANCH",
	} {
		t.Setenv(key, "")
	}
}

func TestDecide_Flags(t *testing.T) {
	clearEventEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "pull request",
			args: []string{"--event", "pull_request"},
			want: "preview\n",
		},
		{
			name: "push to default branch",
			args: []string{"--event", "push", "--ref", "refs/heads/master", "--default-branch", "master"},
			want: "publish\n",
		},
		{
			name: "push to feature branch",
			args: []string{"--event", "push", "--ref", "refs/heads/feature", "--default-branch", "master"},
			want: "skip\n",
		},
		{
			name: "schedule",
			args: []string{"--event", "schedule"},
			want: "publish\n",
		},
		{
			name: "workflow dispatch",
			args: []string{"--event", "workflow_dispatch"},
			want: "publish\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runDecide(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecide_FromEnvironment(t *testing.T) {
	clearEventEnv(t)
	t.Setenv("GITHUB_EVENT_NAME", "push")
	t.Setenv("GITHUB_REF", "refs/heads/master")
	t.Setenv("PAGEGATE_DEFAULT_BRANCH", "master")

	got, err := runDecide(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "publish\n" {
		t.Errorf("stdout = %q, want %q", got, "publish\n")
	}
}

func TestDecide_UnknownEvent(t *testing.T) {
	clearEventEnv(t)

	_, err := runDecide(t, "--event", "deployment_status")
	if !errors.Is(err, trigger.ErrInvalidEvent) {
		t.Errorf("error = %v, want ErrInvalidEvent", err)
	}
}

func TestDecide_MissingEventMetadata(t *testing.T) {
	clearEventEnv(t)

	out, err := runDecide(t)
	if !errors.Is(err, trigger.ErrInvalidEvent) {
		t.Errorf("error = %v, want ErrInvalidEvent", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty on error", out)
	}
}
