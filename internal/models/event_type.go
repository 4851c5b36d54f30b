package models

import (
	"fmt"
	"strings"
)

// EventType represents a domain-significant action tracked by the platform
type EventType string

const (
	WorkspaceCreated        EventType = "WORKSPACE_CREATED"
	ProjectCreated          EventType = "PROJECT_CREATED"
	TaskCompleted           EventType = "TASK_COMPLETED"
	AutomationCreated       EventType = "AUTOMATION_CREATED"
	PlanUpgraded            EventType = "PLAN_UPGRADED"
	TrialStarted            EventType = "TRIAL_STARTED"
	TrialConverted          EventType = "TRIAL_CONVERTED"
	ChurnRiskDetected       EventType = "CHURN_RISK_DETECTED"
	ExpansionSignalDetected EventType = "EXPANSION_SIGNAL_DETECTED"
)

// AllEventTypes lists every known event type
var AllEventTypes = []EventType{
	WorkspaceCreated,
	ProjectCreated,
	TaskCompleted,
	AutomationCreated,
	PlanUpgraded,
	TrialStarted,
	TrialConverted,
	ChurnRiskDetected,
	ExpansionSignalDetected,
}

// ParseEventType parses a string into an EventType
// Returns an error if the event type is unknown
func ParseEventType(name string) (EventType, error) {
	name = strings.ToUpper(strings.TrimSpace(name))

	for _, eventType := range AllEventTypes {
		if string(eventType) == name {
			return eventType, nil
		}
	}

	return "", fmt.Errorf("unknown event type: %s", name)
}

// Slug returns the external-facing dot-separated form of the event type,
// e.g. TASK_COMPLETED -> "task.completed"
func (t EventType) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", ".")
}

// AllEventSlugs returns the external slugs for every known event type
func AllEventSlugs() []string {
	slugs := make([]string, 0, len(AllEventTypes))
	for _, t := range AllEventTypes {
		slugs = append(slugs, t.Slug())
	}
	return slugs
}

// ValidEventSlug reports whether slug matches a known event type
func ValidEventSlug(slug string) bool {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, t := range AllEventTypes {
		if t.Slug() == slug {
			return true
		}
	}
	return false
}
