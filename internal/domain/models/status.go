package models

import (
	"fmt"
	"strings"
)

type EnrichmentStatus string

const (
	StatusPending  EnrichmentStatus = "pending"
	StatusEnriched EnrichmentStatus = "enriched"
	StatusScored   EnrichmentStatus = "scored"
	StatusSkipped  EnrichmentStatus = "skipped"
	StatusFailed   EnrichmentStatus = "failed"
)

var allStatuses = []EnrichmentStatus{StatusPending, StatusEnriched, StatusScored, StatusSkipped, StatusFailed}

// transitions lists every status reachable from a given one. Nothing leads back to pending.
var transitions = map[EnrichmentStatus][]EnrichmentStatus{
	StatusPending:  {StatusEnriched, StatusSkipped, StatusFailed},
	StatusEnriched: {StatusScored, StatusFailed},
	StatusFailed:   {StatusEnriched, StatusSkipped, StatusFailed},
	StatusScored:   {},
	StatusSkipped:  {},
}

func ParseStatus(s string) (EnrichmentStatus, error) {
	status := EnrichmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("unknown enrichment status %q", s)
	}
	return status, nil
}

func (s EnrichmentStatus) String() string {
	return string(s)
}

func (s EnrichmentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether a record may move from one status to another
// during normal processing.
func CanTransition(from, to EnrichmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesOf returns the statuses a record may be in right before it is moved to target.
func SourcesOf(target EnrichmentStatus) []EnrichmentStatus {
	var sources []EnrichmentStatus
	for _, from := range allStatuses {
		if CanTransition(from, target) {
			sources = append(sources, from)
		}
	}
	return sources
}

// ClaimableStatuses are the statuses an enrichment pass may pick up.
func ClaimableStatuses() []EnrichmentStatus {
	return []EnrichmentStatus{StatusPending, StatusFailed}
}

// RescorableStatuses are the statuses an explicit force-rescore may act on.
func RescorableStatuses() []EnrichmentStatus {
	return []EnrichmentStatus{StatusEnriched, StatusScored}
}

// RankableStatuses are the statuses whose final score is meaningful.
func RankableStatuses() []EnrichmentStatus {
	return []EnrichmentStatus{StatusEnriched, StatusScored}
}
