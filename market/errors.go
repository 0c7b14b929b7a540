package market

// Code is a machine-readable rejection reason. Every failed operation is
// answered with exactly one of these; none of them terminates the
// marketplace actor.
type Code string

func (c Code) Error() string { return string(c) }

const (
	// ErrAccessDenied: the caller lacks the required authority or
	// ownership for the operation.
	ErrAccessDenied Code = "ACCESS_DENIED"

	// ErrUnknownCollectionType: no template registered under that name.
	ErrUnknownCollectionType Code = "UNKNOWN_COLLECTION_TYPE"

	// ErrUnknownCollection: the address is not a registered collection.
	ErrUnknownCollection Code = "UNKNOWN_COLLECTION"

	// ErrAlreadyListed: the key is already covered by a sale, auction or
	// identical offer.
	ErrAlreadyListed Code = "ALREADY_LISTED"

	// ErrNotListed: no sale, auction or offer exists for the key.
	ErrNotListed Code = "NOT_LISTED"

	// ErrDeadlineNotReached: the auction is still running.
	ErrDeadlineNotReached Code = "DEADLINE_NOT_REACHED"

	// ErrDeadlinePassed: the auction already expired.
	ErrDeadlinePassed Code = "DEADLINE_PASSED"

	// ErrBidTooLow: the bid does not strictly exceed the current one (or
	// the minimum price for a first bid).
	ErrBidTooLow Code = "BID_TOO_LOW"

	// ErrCreationFailed: the collection spawn was rejected or its
	// instantiation failed.
	ErrCreationFailed Code = "CREATION_FAILED"

	// ErrCollectionCallFailed: the collection actor rejected or errored.
	ErrCollectionCallFailed Code = "COLLECTION_CALL_FAILED"

	// ErrProtocolViolation: a reply (or request) did not match the
	// expected shape.
	ErrProtocolViolation Code = "PROTOCOL_VIOLATION"

	// ErrValueMismatch: attached value is wrong for the operation.
	ErrValueMismatch Code = "VALUE_MISMATCH"

	// ErrBelowMinimumValue: amount under the configured minimum.
	ErrBelowMinimumValue Code = "BELOW_MINIMUM_VALUE"

	// ErrCooldownActive: the caller created a collection too recently.
	ErrCooldownActive Code = "COOLDOWN_ACTIVE"

	// ErrArithmeticOverflow: a price or royalty computation overflowed.
	ErrArithmeticOverflow Code = "ARITHMETIC_OVERFLOW"
)
