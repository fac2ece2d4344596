package utils

import "errors"

// Error kinds surfaced to the HTTP layer as 4xx. Wrap with fmt.Errorf("%w: ...")
// and match with errors.Is.
var (
	ErrorRecordNotFound     = errors.New("record not found")
	ErrorInvalidAmount      = errors.New("invalid amount")
	ErrorInvalidState       = errors.New("invalid state")
	ErrorInconsistentLedger = errors.New("inconsistent ledger")
)
