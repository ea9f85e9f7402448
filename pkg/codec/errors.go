package codec

import "errors"

// ErrMissingKind indicates a node without a kind tag reached the codec.
// Such a node can sit on a canvas but can never be persisted or configured
// until the sequence is reloaded.
var ErrMissingKind = errors.New("node is missing its kind tag")
