// Package permission contains the access control policies for snippets.
//
// A Policy is a predicate over (action, caller, target). Policies are small
// values composed with All, and the service layer evaluates them in two
// stages:
//
//  1. collection stage, before any record is fetched (target == nil); this
//     stops anonymous writers without a wasted lookup
//  2. object stage, after the target record is loaded and before any
//     mutation is applied
//
// A denial at either stage must leave the store untouched.
package permission

import "github.com/sakif/snippetbin/internal/model"

// Anonymous is the caller identity of an unauthenticated request.
const Anonymous = ""

// Action identifies one of the resource operations.
type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionHighlight
	ActionCreate
	ActionUpdate
	ActionDelete
)

// Mutates reports whether the action is write-class. List, retrieve and
// highlight are read-class; everything else changes state.
func (a Action) Mutates() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

func (a Action) String() string {
	switch a {
	case ActionList:
		return "list"
	case ActionRetrieve:
		return "retrieve"
	case ActionHighlight:
		return "highlight"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

// Policy decides whether a caller may perform an action. target is nil at
// the collection stage and the loaded record at the object stage.
type Policy interface {
	Allow(action Action, callerID string, target *model.Snippet) bool
}

// AuthenticatedOrReadOnly allows read-class actions for any caller and
// write-class actions only for identified callers.
type AuthenticatedOrReadOnly struct{}

func (AuthenticatedOrReadOnly) Allow(action Action, callerID string, _ *model.Snippet) bool {
	return !action.Mutates() || callerID != Anonymous
}

// OwnerOrReadOnly allows read-class actions for any caller and write-class
// actions on a specific record only for its owner. Without a target record
// it has nothing to decide and allows.
type OwnerOrReadOnly struct{}

func (OwnerOrReadOnly) Allow(action Action, callerID string, target *model.Snippet) bool {
	if target == nil || !action.Mutates() {
		return true
	}
	return callerID == target.OwnerID
}

type allOf []Policy

// All composes policies with logical AND: every policy must allow.
func All(policies ...Policy) Policy {
	return allOf(policies)
}

func (p allOf) Allow(action Action, callerID string, target *model.Snippet) bool {
	for _, policy := range p {
		if !policy.Allow(action, callerID, target) {
			return false
		}
	}
	return true
}
