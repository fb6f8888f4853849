package recruiting

import "errors"

var (
	ErrPostingNotFound     = errors.New("job posting not found")
	ErrPostingClosed       = errors.New("job posting is closed")
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("employee already applied to this posting")
	ErrAlreadyDecided      = errors.New("application already decided")
)
