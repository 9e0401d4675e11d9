package cli

import "fmt"

type notLoggedInError struct{}

func (notLoggedInError) Error() string {
	return "not logged in; run `sonsoles login <phone>` (or pass --cleaner)"
}

func errNotLoggedIn() error {
	return notLoggedInError{}
}

type badArgumentError struct {
	flag   string
	reason string
}

func (e badArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.flag, e.reason)
}

func errBadArgument(flag, reason string) error {
	return badArgumentError{flag: flag, reason: reason}
}
