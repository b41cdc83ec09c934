package domain

// User is the active identity for a session. At most one User exists per
// session; it is created at login or demo-start and destroyed at logout.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	IsDemo   bool   `json:"isDemo"`
	Token    string `json:"token,omitempty"`
}

// Sender is a registered email address whose notifications are scanned.
// RowKey is an opaque handle used for deletion.
type Sender struct {
	Email  string `json:"email"`
	RowKey string `json:"rowKey"`
}

// SessionClaims is the payload carried by the opaque session credential.
// It is produced only by a pure decode that fails closed on malformed input.
type SessionClaims struct {
	ID        string // jti
	Subject   string // sub
	FirstName string
	LastName  string
}

// FullName joins the name claims the way the dashboard displays them.
func (c SessionClaims) FullName() string {
	return c.FirstName + " " + c.LastName
}

// User builds the session User for a decoded credential. Restored sessions
// are never demo sessions; demo identities are created ad hoc and carry no
// credential.
func (c SessionClaims) User(token string) *User {
	return &User{
		ID:       c.ID,
		Username: c.Subject,
		Name:     c.FullName(),
		IsDemo:   false,
		Token:    token,
	}
}

// DemoUser is the fixed identity used when the dashboard runs against the
// in-memory demo dataset.
func DemoUser() *User {
	return &User{
		ID:       "demo-user",
		Username: "demo",
		Name:     "Demo Account",
		IsDemo:   true,
	}
}
