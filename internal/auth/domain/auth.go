package domain

// AuthState is where a client stands in the login sequence.
//
//	Anonymous -> PasswordVerified -> MFAPending -> Authenticated
//	                              \--------------> Authenticated (no MFA)
//
// PasswordVerified only exists inside a login call; a stored session is
// always MFAPending or Authenticated.
type AuthState int

const (
	StateAnonymous AuthState = iota
	StatePasswordVerified
	StateMFAPending
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StatePasswordVerified:
		return "password_verified"
	case StateMFAPending:
		return "mfa_pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// LoginResult is the outcome of a successful password check.
type LoginResult struct {
	Session     Session
	User        User
	RequiresMFA bool
}

// Status answers "is this session signed in". User is set whenever the
// session exists, even when a second factor is still outstanding.
type Status struct {
	Authenticated bool
	State         AuthState
	User          *User
}
