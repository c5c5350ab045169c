package model

import (
	"errors"
	"fmt"
)

// EditableState is the workflow status of an editable, derived from its
// latest revision.
type EditableState string

const (
	StateNew                        EditableState = "new"
	StateReadyForReview             EditableState = "ready_for_review"
	StateNeedsSubmitterConfirmation EditableState = "needs_submitter_confirmation"
	StateNeedsSubmitterChanges      EditableState = "needs_submitter_changes"
	StateAccepted                   EditableState = "accepted"
	StateRejected                   EditableState = "rejected"
)

type InitialState string

const (
	InitialStateNew                        InitialState = "new"
	InitialStateReadyForReview             InitialState = "ready_for_review"
	InitialStateNeedsSubmitterConfirmation InitialState = "needs_submitter_confirmation"
)

type FinalState string

const (
	FinalStateNone                       FinalState = "none"
	FinalStateReplaced                   FinalState = "replaced"
	FinalStateNeedsSubmitterConfirmation FinalState = "needs_submitter_confirmation"
	FinalStateNeedsSubmitterChanges      FinalState = "needs_submitter_changes"
	FinalStateAccepted                   FinalState = "accepted"
	FinalStateRejected                   FinalState = "rejected"
)

var (
	ErrNoRevision     = errors.New("editable has no revision")
	ErrUndefinedState = errors.New("revision cannot be the latest revision of an editable")
)

type revisionState struct {
	initial InitialState
	final   FinalState
}

// An empty initial state means the value is taken from Revision.ReplacedState.
var revisionStates = map[RevisionType]revisionState{
	RevisionTypeNew:                        {InitialStateNew, FinalStateNone},
	RevisionTypeReadyForReview:             {InitialStateReadyForReview, FinalStateNone},
	RevisionTypeNeedsSubmitterConfirmation: {InitialStateNeedsSubmitterConfirmation, FinalStateNone},
	RevisionTypeChangesAcceptance:          {InitialStateNeedsSubmitterConfirmation, FinalStateAccepted},
	RevisionTypeChangesRejection:           {InitialStateNeedsSubmitterConfirmation, FinalStateNeedsSubmitterChanges},
	RevisionTypeNeedsSubmitterChanges:      {InitialStateReadyForReview, FinalStateNeedsSubmitterChanges},
	RevisionTypeAcceptance:                 {InitialStateReadyForReview, FinalStateAccepted},
	RevisionTypeRejection:                  {InitialStateReadyForReview, FinalStateRejected},
	RevisionTypeReplacement:                {"", FinalStateNone},
	RevisionTypeReset:                      {InitialStateReadyForReview, FinalStateNone},
}

// States returns the (initial, final) pair of a revision.
func (r *Revision) States() (InitialState, FinalState) {
	s, ok := revisionStates[r.Type]
	if !ok {
		return "", ""
	}
	if s.initial == "" {
		return r.ReplacedState, s.final
	}
	return s.initial, s.final
}

// DeriveState computes the state of an editable whose latest (non-undone)
// revision is latest. It is a pure function of the revision's type.
func DeriveState(latest *Revision) (EditableState, error) {
	if latest == nil {
		return "", ErrNoRevision
	}

	initial, final := latest.States()
	switch final {
	case FinalStateNone:
		switch initial {
		case InitialStateNew:
			return StateNew, nil
		case InitialStateReadyForReview:
			return StateReadyForReview, nil
		case InitialStateNeedsSubmitterConfirmation:
			return StateNeedsSubmitterConfirmation, nil
		}
	case FinalStateReplaced, FinalStateNeedsSubmitterConfirmation:
		return "", fmt.Errorf("%w: revision %s (%s)", ErrUndefinedState, latest.ID, latest.Type)
	case FinalStateNeedsSubmitterChanges:
		return StateNeedsSubmitterChanges, nil
	case FinalStateAccepted:
		return StateAccepted, nil
	case FinalStateRejected:
		return StateRejected, nil
	}

	return "", fmt.Errorf("%w: revision %s has type %q", ErrUndefinedState, latest.ID, latest.Type)
}

// LatestRevision returns the newest revision of revs that has not been
// undone. revs must be ordered oldest first.
func LatestRevision(revs []*Revision) *Revision {
	for i := len(revs) - 1; i >= 0; i-- {
		if !revs[i].IsUndone {
			return revs[i]
		}
	}
	return nil
}
