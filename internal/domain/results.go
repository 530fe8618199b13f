package domain

// Result markers returned by write procedures in their "result" column.
// The SQL procedures and the in-memory fake substrate both speak this
// vocabulary; the domain managers interpret it.
const (
	ResultRecorded  = "recorded"
	ResultPurchased = "purchased"
	ResultEquipped  = "equipped"
	ResultUpdated   = "updated"

	// Friend transitions
	ResultRequested = "requested"
	ResultPending   = "pending"  // request was a no-op, already pending
	ResultAccepted  = "accepted" // also returned for re-requests of accepted pairs
	ResultDenied    = "denied"
	ResultRemoved   = "removed"
	ResultNoPending = "no_pending" // accept/deny with no matching pending request
	ResultNotFound  = "not_found"  // remove with no relationship record

	// Territory claims
	ResultClaimed      = "claimed"
	ResultAlreadyOwned = "already_owned"
)
