package model

// Principal is the operator behind a dashboard request. When the API runs
// without a token secret every request is served as AnonymousPrincipal.
type Principal struct {
	UserID string
	Email  string
}

var AnonymousPrincipal = Principal{UserID: "local"}

func (p Principal) IsAnonymous() bool {
	return p.UserID == AnonymousPrincipal.UserID
}
