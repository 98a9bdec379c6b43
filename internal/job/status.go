package job

import "strings"

// Status represents the lifecycle of a download job. Transitions run strictly
// forward; Cancelled is reachable from any non-terminal status.
type Status string

const (
	StatusQueued         Status = "queued"
	StatusInitializing   Status = "initializing"
	StatusResolving      Status = "resolving"
	StatusDownloading    Status = "downloading"
	StatusPostProcessing Status = "post_processing"
	StatusFinalizing     Status = "finalizing"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusCancelled      Status = "cancelled"
)

var allStatuses = []Status{
	StatusQueued,
	StatusInitializing,
	StatusResolving,
	StatusDownloading,
	StatusPostProcessing,
	StatusFinalizing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// statusOrder gives each forward lifecycle status its position. Terminal
// statuses sit past every forward status.
var statusOrder = map[Status]int{
	StatusQueued:         0,
	StatusInitializing:   1,
	StatusResolving:      2,
	StatusDownloading:    3,
	StatusPostProcessing: 4,
	StatusFinalizing:     5,
	StatusCompleted:      6,
	StatusFailed:         6,
	StatusCancelled:      6,
}

// ParseStatus normalizes a raw status string.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next respects the forward
// lifecycle. Cancelled is reachable from any non-terminal status; no status
// is re-enterable.
func (s Status) CanTransition(next Status) bool {
	if _, ok := statusSet[s]; !ok {
		return false
	}
	if _, ok := statusSet[next]; !ok {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusOrder[next] > statusOrder[s]
}

// Display renders the status as a short human-readable label. The
// post-processing status reads as Processing in progress output.
func (s Status) Display() string {
	switch s {
	case StatusPostProcessing:
		return "Processing"
	case "":
		return ""
	}
	parts := strings.Split(string(s), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
