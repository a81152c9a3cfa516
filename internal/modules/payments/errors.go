package payments

import "errors"

// ErrInvalidRequest is the one error the orchestrator lets escape:
// the caller handed us no usable request at all. Everything else
// (store faults, gateway faults, policy rejections) comes back as a
// failure Result.
var ErrInvalidRequest = errors.New("invalid payment request")
