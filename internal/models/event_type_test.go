package models

import "testing"

func TestParseEventType(t *testing.T) {
	got, err := ParseEventType("TASK_COMPLETED")
	if err != nil || got != TaskCompleted {
		t.Fatalf("ParseEventType(TASK_COMPLETED) = %v, %v", got, err)
	}

	// Case and whitespace tolerant
	got, err = ParseEventType("  workspace_created ")
	if err != nil || got != WorkspaceCreated {
		t.Fatalf("ParseEventType lenient parse failed: %v, %v", got, err)
	}

	if _, err := ParseEventType("TASK_DELETED"); err == nil {
		t.Fatalf("expected error for unknown event type")
	}
	if _, err := ParseEventType(""); err == nil {
		t.Fatalf("expected error for empty event type")
	}
}

func TestEventTypeSlug(t *testing.T) {
	cases := map[EventType]string{
		WorkspaceCreated:        "workspace.created",
		TaskCompleted:           "task.completed",
		ChurnRiskDetected:       "churn.risk.detected",
		ExpansionSignalDetected: "expansion.signal.detected",
	}
	for eventType, want := range cases {
		if got := eventType.Slug(); got != want {
			t.Errorf("%s.Slug() = %q, want %q", eventType, got, want)
		}
	}
}

func TestValidEventSlug(t *testing.T) {
	if !ValidEventSlug("task.completed") {
		t.Fatalf("task.completed must be a valid slug")
	}
	if ValidEventSlug("task.deleted") {
		t.Fatalf("task.deleted must not be a valid slug")
	}
	if len(AllEventSlugs()) != len(AllEventTypes) {
		t.Fatalf("slug list must cover every event type")
	}
}
