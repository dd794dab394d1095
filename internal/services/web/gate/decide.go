package gate

import "github.com/louisbranch/ledgerdesk/internal/services/web/routepath"

// Outcome is what the page request should produce.
type Outcome int

const (
	// OutcomeNothing renders the loading placeholder and navigates nowhere.
	OutcomeNothing Outcome = iota
	OutcomeRender
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "nothing"
	}
}

// Input is everything Decide looks at.
type Input struct {
	Path string
	// Interactive is false for prefetch and prerender requests that have no
	// user behind them.
	Interactive bool
	HasToken    bool
	User        *User
	// Fetching is set while a profile fetch for this session is in flight.
	Fetching bool
	// AuthExpired is set once the backend rejected the session's token.
	AuthExpired bool
	// FetchFailed is set while a failed profile fetch is backing off.
	FetchFailed bool
}

// Decision is the single effect of one evaluation.
type Decision struct {
	Outcome  Outcome
	Location string
	// Fetch asks the caller to start the profile fetch.
	Fetch bool
	// ClearToken asks the caller to drop the stored credential.
	ClearToken bool
}

func render() Decision { return Decision{Outcome: OutcomeRender} }

func redirect(location string) Decision {
	return Decision{Outcome: OutcomeRedirect, Location: location}
}

// Decide computes the outcome for one page request. It has no side effects.
func Decide(in Input) Decision {
	if !in.Interactive {
		return Decision{Outcome: OutcomeNothing}
	}

	switch routepath.Classify(in.Path) {
	case routepath.ClassGuest:
		if in.AuthExpired {
			return Decision{Outcome: OutcomeRender, ClearToken: true}
		}
		if in.HasToken {
			return redirect(routepath.DefaultLanding)
		}
		return render()
	case routepath.ClassAuthenticated:
		return decideAuthenticated(in)
	default:
		return render()
	}
}

func decideAuthenticated(in Input) Decision {
	if in.AuthExpired {
		return Decision{Outcome: OutcomeRedirect, Location: routepath.Login, ClearToken: true}
	}
	if !in.HasToken {
		return redirect(routepath.Login)
	}
	if in.User == nil {
		return Decision{Outcome: OutcomeNothing, Fetch: !in.Fetching && !in.FetchFailed}
	}

	u := *in.User
	onTwoFactor := routepath.Under(in.Path, routepath.Verify2FA)
	onVerifySignup := routepath.Under(in.Path, routepath.VerifySignup)
	switch {
	case u.Pending2FA:
		if !onTwoFactor {
			return redirect(routepath.Verify2FA)
		}
	case onTwoFactor:
		// Straight to the next rung, so an unverified user leaves
		// /verify-2fa in one hop.
		return redirect(LandingFor(u))
	case !u.SignupVerified:
		if !onVerifySignup {
			return redirect(routepath.VerifySignup)
		}
	case onVerifySignup:
		return redirect(routepath.DefaultLanding)
	}
	return render()
}
