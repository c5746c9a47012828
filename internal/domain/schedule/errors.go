package schedule

import "errors"

var ErrNoPolicyFound = errors.New("no schedule policy found for today")
