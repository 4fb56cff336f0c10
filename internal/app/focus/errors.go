package focus

import "errors"

// Policy rejections: the command precondition failed and state is untouched.
var (
	ErrVowUnavailable     = errors.New("vow_unavailable")
	ErrRCTUnavailable     = errors.New("rct_unavailable")
	ErrSleepAlreadyLogged = errors.New("sleep_already_logged")
	ErrInvalidRequest     = errors.New("invalid_request")
)
