package auth

// Outcome is what the route guard does with a request.
type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeShowReset
	OutcomeRedirectLogin
	OutcomeShowProtected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeShowReset:
		return "show_reset"
	case OutcomeRedirectLogin:
		return "redirect_login"
	default:
		return "show_protected"
	}
}

// GuardState is the input of Guard.
type GuardState struct {
	Loading           bool
	NeedPasswordReset bool
	Signed            bool
}

// Guard decides a protected route. First match wins: loading, reset
// required, not signed, protected view.
func Guard(s GuardState) Outcome {
	switch {
	case s.Loading:
		return OutcomeLoading
	case s.NeedPasswordReset:
		return OutcomeShowReset
	case !s.Signed:
		return OutcomeRedirectLogin
	default:
		return OutcomeShowProtected
	}
}

// GuardState snapshots the session for Guard.
func (s *Session) GuardState(loading bool) GuardState {
	return GuardState{Loading: loading, NeedPasswordReset: s.NeedPasswordReset, Signed: s.Signed}
}
