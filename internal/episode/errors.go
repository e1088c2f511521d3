package episode

import "errors"

var (
	ErrMissingEntryDate = errors.New("entry date is required")
	ErrClientNotFound   = errors.New("client not found")
	ErrEpisodeNotFound  = errors.New("episode not found")
)
