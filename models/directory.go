package models

// Actor is a user record returned by the lookup service.
type Actor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Target is a piece of content a reminder can be attached to.
type Target struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Locator string `json:"locator"`
}

// PrivateMessage is a message addressed to a single actor.
type PrivateMessage struct {
	To      Actor  `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
