package domain

import (
	"fmt"

	"github.com/SscSPs/books_backend/internal/apperrors"
)

// EntryEvent is an action requested against a journal entry.
type EntryEvent string

const (
	EventCreate       EntryEvent = "create"
	EventCreatePosted EntryEvent = "create_posted"
	EventEdit         EntryEvent = "edit"
	EventAskForReview EntryEvent = "ask_for_review"
	EventPost         EntryEvent = "post"
	EventVoid         EntryEvent = "void"
	EventDelete       EntryEvent = "delete"
)

// StatusNone is the "from" state of a create and the "to" state of a delete.
const StatusNone EntryStatus = ""

type transitionKey struct {
	from  EntryStatus
	event EntryEvent
}

type transitionRule struct {
	to    EntryStatus
	roles []ActorRole
}

var (
	editorRoles  = []ActorRole{RoleOwner, RoleAccountant, RoleAccountantSupervisor}
	reviewRoles  = []ActorRole{RoleAccountant, RoleAccountantSupervisor}
	postingRoles = []ActorRole{RoleAccountantSupervisor, RoleSystem}
	anyRole      = []ActorRole{RoleOwner, RoleAccountant, RoleAccountantSupervisor, RoleSystem}
)

var transitions = map[transitionKey]transitionRule{
	{StatusNone, EventCreate}:        {to: StatusDraft, roles: anyRole},
	{StatusNone, EventCreatePosted}:  {to: StatusPosted, roles: postingRoles},
	{StatusDraft, EventEdit}:         {to: StatusDraft, roles: editorRoles},
	{StatusDraft, EventAskForReview}: {to: StatusAskForReview, roles: reviewRoles},
	{StatusAskForReview, EventEdit}:  {to: StatusAskForReview, roles: reviewRoles},
	{StatusDraft, EventPost}:         {to: StatusPosted, roles: postingRoles},
	{StatusAskForReview, EventPost}:  {to: StatusPosted, roles: postingRoles},
	{StatusPosted, EventVoid}:        {to: StatusVoided, roles: postingRoles},
	{StatusDraft, EventDelete}:       {to: StatusNone, roles: editorRoles},
}

// Transition is the single authority on the journal entry lifecycle.
// It returns the status the entry moves to, an InvalidStateTransitionError when the event
// is not allowed from current, or ErrForbidden when role may not trigger it.
// Balance preconditions are checked by the caller once the move is accepted.
func Transition(current EntryStatus, event EntryEvent, role ActorRole) (EntryStatus, error) {
	rule, ok := transitions[transitionKey{from: current, event: event}]
	if !ok {
		return current, apperrors.NewInvalidStateTransition(string(current), string(event))
	}
	for _, r := range rule.roles {
		if r == role {
			return rule.to, nil
		}
	}
	return current, fmt.Errorf("%w: role %q may not %s a journal entry in status %q", apperrors.ErrForbidden, role, event, displayStatus(current))
}

// CanTransition reports whether role could trigger event from current.
func CanTransition(current EntryStatus, event EntryEvent, role ActorRole) bool {
	_, err := Transition(current, event, role)
	return err == nil
}

// IsEditable reports whether an entry's lines may still change.
func (s EntryStatus) IsEditable() bool {
	return s == StatusDraft || s == StatusAskForReview
}

func displayStatus(s EntryStatus) string {
	if s == StatusNone {
		return "none"
	}
	return string(s)
}
