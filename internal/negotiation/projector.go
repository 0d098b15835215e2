// Package negotiation derives the set of valid user actions from the
// authoritative offer and transaction records.
//
// Project is a pure query: it holds no state, is safe to call on every
// refresh, and never panics. Unclassifiable record combinations degrade to
// an empty action set with a diagnostic log entry. The server re-validates
// every action on dispatch; this projection only decides what is worth
// presenting to the viewer.
package negotiation

import (
	"log/slog"
	"sort"

	"github.com/palengke-ph/backend/internal/models"
)

// Action identifies an operation the viewing user may invoke.
type Action string

const (
	// AcceptOffer and RejectOffer resolve a pending offer (seller only).
	AcceptOffer Action = "accept_offer"
	RejectOffer Action = "reject_offer"

	// UpdateOffer changes the amount of a pending offer (buyer only).
	// There is no withdraw action: the backend exposes no such endpoint.
	UpdateOffer Action = "update_offer"

	// ProposeMeetup schedules the first meetup proposal; UpdateMeetup
	// replaces an existing one. Both require a future timestamp and a
	// location with coordinates.
	ProposeMeetup Action = "propose_meetup"
	UpdateMeetup  Action = "update_meetup"

	// AcceptMeetup confirms the counterpart's proposal.
	AcceptMeetup Action = "accept_meetup"

	// ViewDetails is the only action once the meetup is confirmed.
	ViewDetails Action = "view_details"
)

// RequiresSchedule reports whether the action needs a timestamp and a
// located address as input.
func (a Action) RequiresSchedule() bool {
	return a == ProposeMeetup || a == UpdateMeetup
}

// ActionSet is the set of actions currently presentable to a user.
type ActionSet map[Action]struct{}

// Has reports whether the set contains a.
func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// List returns the actions in stable sorted order.
func (s ActionSet) List() []Action {
	out := make([]Action, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func setOf(actions ...Action) ActionSet {
	s := make(ActionSet, len(actions))
	for _, a := range actions {
		s[a] = struct{}{}
	}
	return s
}

// Project computes the actions presentable to currentUserID given the
// authoritative offer and transaction state. Identical inputs always yield
// an identical set.
func Project(offer *models.Offer, state TransactionState, currentUserID string) ActionSet {
	if offer == nil {
		return setOf()
	}

	switch offer.Status {
	case models.OfferPending:
		return pendingActions(offer, currentUserID)
	case models.OfferAccepted:
		return acceptedActions(offer, state, currentUserID)
	case models.OfferRejected, models.OfferExpired, models.OfferWithdrawn:
		// Terminal non-accepted offers display status only.
		return setOf()
	default:
		slog.Warn("negotiation: unknown offer status",
			"offer_id", offer.ID,
			"status", offer.Status,
		)
		return setOf()
	}
}

func pendingActions(offer *models.Offer, currentUserID string) ActionSet {
	switch currentUserID {
	case offer.SellerID:
		return setOf(AcceptOffer, RejectOffer)
	case offer.BuyerID:
		return setOf(UpdateOffer)
	}
	return setOf()
}

func acceptedActions(offer *models.Offer, state TransactionState, currentUserID string) ActionSet {
	active, ok := state.(ActiveTransaction)
	if !ok {
		// An accepted offer should always carry an active transaction.
		// Seen with NoTransaction or a terminal transaction this is an
		// inconsistency: present nothing rather than guessing.
		slog.Warn("negotiation: accepted offer without active transaction",
			"offer_id", offer.ID,
			"conversation_id", offer.ConversationID,
			"state", stateName(state),
		)
		return setOf()
	}

	tx := active.Transaction
	if !tx.Party(currentUserID) {
		return setOf()
	}

	switch tx.MeetupStatus {
	case models.MeetupNotScheduled:
		return setOf(ProposeMeetup)
	case models.MeetupScheduled:
		if tx.MeetupProposedBy == "" {
			// Legacy rows predate proposer tracking: offer both actions
			// to both parties.
			return setOf(UpdateMeetup, AcceptMeetup)
		}
		if tx.MeetupProposedBy == currentUserID {
			// The proposer waits for the other party.
			return setOf(UpdateMeetup)
		}
		return setOf(UpdateMeetup, AcceptMeetup)
	case models.MeetupConfirmed:
		return setOf(ViewDetails)
	default:
		slog.Warn("negotiation: unknown meetup status",
			"transaction_id", tx.ID,
			"meetup_status", tx.MeetupStatus,
		)
		return setOf()
	}
}

func stateName(state TransactionState) string {
	switch state.(type) {
	case NoTransaction:
		return "none"
	case ActiveTransaction:
		return "active"
	case TerminalTransaction:
		return "terminal"
	}
	return "unknown"
}
