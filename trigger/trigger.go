package trigger

import (
	"errors"
	"fmt"
)

// EventKind identifies the kind of CI event that started the run.
type EventKind string

// EventKind values.
const (
	EventPullRequest EventKind = "pull_request"
	EventPush        EventKind = "push"
	EventSchedule    EventKind = "schedule"
	EventManual      EventKind = "manual"
)

// Action is the pipeline decision for a run.
type Action string

// Action values.
const (
	// ActionPreview packages the build output for inspection without publishing.
	ActionPreview Action = "preview"
	// ActionPublish pushes the build output to the live site.
	ActionPublish Action = "publish"
	// ActionSkip does nothing.
	ActionSkip Action = "skip"
)

// ErrInvalidEvent is returned when event metadata is missing or unrecognized.
var ErrInvalidEvent = errors.New("invalid event metadata")

// Context describes the event a decision is made for.
// It is built once per invocation and never mutated.
type Context struct {
	EventKind       EventKind
	BranchRef       string
	IsDefaultBranch bool
}

// Decide returns the pipeline action for the given event context.
//
// Pull requests always get a preview. Pushes publish only from the default
// branch. Scheduled and manual runs always publish; a manual run is an
// operator asking for a deploy, and the published site subsumes the preview.
func Decide(ctx Context) (Action, error) {
	switch ctx.EventKind {
	case EventPullRequest:
		return ActionPreview, nil
	case EventSchedule, EventManual:
		return ActionPublish, nil
	case EventPush:
		if ctx.IsDefaultBranch {
			return ActionPublish, nil
		}
		return ActionSkip, nil
	default:
		return "", fmt.Errorf("%w: unknown event kind %q", ErrInvalidEvent, string(ctx.EventKind))
	}
}

// ParseEventKind converts a raw event name to an EventKind.
// GitHub Actions names are accepted alongside the canonical values.
func ParseEventKind(name string) (EventKind, error) {
	switch name {
	case "pull_request", "pull_request_target":
		return EventPullRequest, nil
	case "push":
		return EventPush, nil
	case "schedule":
		return EventSchedule, nil
	case "workflow_dispatch", "manual":
		return EventManual, nil
	case "":
		return "", fmt.Errorf("%w: event name is empty", ErrInvalidEvent)
	default:
		return "", fmt.Errorf("%w: unknown event name %q", ErrInvalidEvent, name)
	}
}
