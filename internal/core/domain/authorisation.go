package domain

import "fmt"

// Authorisation is an opaque signed assertion binding a principal to a
// resource key. The ledger attaches it to notes and asks the verifier to
// check it; it never inspects the token itself.
type Authorisation struct {
	Token string `json:"token"`
}

// IsEmpty reports whether no token is present.
func (a Authorisation) IsEmpty() bool { return a.Token == "" }

// AccountResource is the resource key an authorisation must bind to in
// order to act on the account.
func AccountResource(accountUID string) string {
	return fmt.Sprintf("account/%s", accountUID)
}
