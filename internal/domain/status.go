package domain

import "strings"

// QueueStatus tracks a translation work item through its lifecycle.
type QueueStatus string

const (
	QueuePending   QueueStatus = "PENDING"
	QueueReady     QueueStatus = "READY"
	QueueCompleted QueueStatus = "COMPLETED"
	QueueError     QueueStatus = "ERROR"
)

// ProjectStatus tracks a translation batch. Transitions only move forward.
type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "PENDING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
)

var projectOrder = map[ProjectStatus]int{
	ProjectPending:    0,
	ProjectInProgress: 1,
	ProjectCompleted:  2,
}

// CanTransition reports whether a project may move from one status to the
// next. Regressions and transitions out of COMPLETED are rejected.
func (s ProjectStatus) CanTransition(next ProjectStatus) bool {
	from, ok := projectOrder[s]
	if !ok {
		return false
	}
	to, ok := projectOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// Provider identifies a translation vendor.
type Provider string

const (
	// ProviderOHT is OneHourTranslation, an asynchronous human marketplace.
	ProviderOHT Provider = "OHT"
	// ProviderGCT is Google Cloud Translation, a synchronous machine API.
	ProviderGCT Provider = "GCT"
)

// ParseProvider normalizes a provider code, returning false for unknown values.
func ParseProvider(value string) (Provider, bool) {
	switch Provider(strings.ToUpper(strings.TrimSpace(value))) {
	case ProviderOHT:
		return ProviderOHT, true
	case ProviderGCT:
		return ProviderGCT, true
	default:
		return "", false
	}
}

func (p Provider) String() string { return string(p) }
