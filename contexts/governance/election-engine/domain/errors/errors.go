package errors

import "errors"

var (
	ErrInvalidConfiguration = errors.New("winners capacity must be greater than zero")
	ErrApplicationClosed    = errors.New("application stage is closed")
	ErrDuplicateApplication = errors.New("identity already applied to this election")
	ErrWrongIdentity        = errors.New("actor does not own the candidate identity")
	ErrPrivilegeDenied      = errors.New("stage change not allowed")
	ErrElectionClosed       = errors.New("election is closed")
	ErrStageMismatch        = errors.New("requested stage is incompatible with current stage")
	ErrNotVotingStage       = errors.New("election is not at voting stage")
	ErrAlreadyVoted         = errors.New("identity already voted in this election")

	ErrAlreadyRegistered         = errors.New("candidate is already registered")
	ErrInvalidIdentity           = errors.New("invalid identity")
	ErrInvalidStage              = errors.New("invalid election stage")
	ErrInvalidElectionKey        = errors.New("invalid election key")
	ErrElectionExists            = errors.New("election already exists")
	ErrElectionNotFound          = errors.New("election not found")
	ErrCandidateIdentityNotFound = errors.New("candidate identity not found")
	ErrCandidateNotFound         = errors.New("candidate not found")
	ErrVoteReceiptNotFound       = errors.New("vote receipt not found")
	ErrResultNotFound            = errors.New("election result not found")
	ErrRecordExists              = errors.New("record already exists")
	ErrConflict                  = errors.New("election record conflict")
)
