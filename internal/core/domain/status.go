package domain

import "time"

// Status is the review state shared by tasks, bugs and applications.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
	StatusApproved   Status = "approved"
)

// EntityType names one of the reviewable record kinds.
type EntityType string

const (
	EntityTask        EntityType = "task"
	EntityBug         EntityType = "bug"
	EntityApplication EntityType = "application"
)

// statusDomains lists every status an entity type may hold.
var statusDomains = map[EntityType][]Status{
	EntityTask:        {StatusPending, StatusInProgress, StatusCompleted, StatusRejected},
	EntityBug:         {StatusPending, StatusInProgress, StatusCompleted, StatusRejected},
	EntityApplication: {StatusPending, StatusApproved, StatusRejected},
}

// reviewTargets lists the statuses a reviewer may move an entity type into.
// Tasks never enter in_progress; bugs do.
var reviewTargets = map[EntityType][]Status{
	EntityTask:        {StatusPending, StatusCompleted, StatusRejected},
	EntityBug:         {StatusPending, StatusInProgress, StatusCompleted, StatusRejected},
	EntityApplication: {StatusPending, StatusApproved, StatusRejected},
}

// Valid reports whether e is a known entity type.
func (e EntityType) Valid() bool {
	_, ok := statusDomains[e]
	return ok
}

// Stamps reports whether a transition on e records the acting reviewer.
func (e EntityType) Stamps() bool {
	return e == EntityTask || e == EntityBug
}

// Allows reports whether s belongs to the status domain of e.
func (e EntityType) Allows(s Status) bool {
	return contains(statusDomains[e], s)
}

// CanTransitionTo reports whether an entity of type e may move from s to next.
// Any member of the domain may move to any allowed review target, including itself.
func (s Status) CanTransitionTo(e EntityType, next Status) bool {
	if !e.Allows(s) {
		return false
	}
	return contains(reviewTargets[e], next)
}

func contains(set []Status, s Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Transition is the outcome of an authorized status change.
// Assignee is nil when the entity type does not record reviewers.
type Transition struct {
	Status   Status
	Assignee *Identity
}

// StatusChangeEvent is published after a transition has been persisted.
type StatusChangeEvent struct {
	Entity        EntityType `json:"entity"`
	ID            int64      `json:"id"`
	Status        Status     `json:"status"`
	ActorID       int64      `json:"actor_id"`
	ActorUsername string     `json:"actor_username"`
	AuthorID      int64      `json:"author_id"`
	At            time.Time  `json:"at"`
}
