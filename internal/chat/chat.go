// Package chat holds the transport-neutral message types exchanged with the
// messaging collaborator.
package chat

// Message is one inbound chat message.
type Message struct {
	UserID string `json:"userId"`
	Body   string `json:"body"`
}

// Reply is what the bot wants delivered back to the user. ImageRef and
// DocumentRef are opaque references the transport knows how to attach.
type Reply struct {
	Text        string `json:"text"`
	ImageRef    string `json:"imageRef,omitempty"`
	DocumentRef string `json:"documentRef,omitempty"`
}

// Text builds a plain text reply.
func Text(s string) Reply {
	return Reply{Text: s}
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && r.ImageRef == "" && r.DocumentRef == ""
}
