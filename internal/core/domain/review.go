package domain

// Venue is a conference venue where the user sits on the area chair committee.
type Venue struct {
	ID      string `json:"venue_id"`
	GroupID string `json:"group_id"`
}

type Group struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

type Edge struct {
	Head string `json:"head"`
	Tail string `json:"tail"`
}

type Note struct {
	ID          string         `json:"id"`
	Number      int            `json:"number"`
	Forum       string         `json:"forum"`
	Invitation  string         `json:"invitation,omitempty"`
	Invitations []string       `json:"invitations,omitempty"`
	Signatures  []string       `json:"signatures"`
	Content     map[string]any `json:"content"`
}

// AllInvitations merges the legacy single invitation with the v2 list.
func (n Note) AllInvitations() []string {
	out := make([]string, 0, len(n.Invitations)+1)
	out = append(out, n.Invitations...)
	if n.Invitation != "" {
		out = append(out, n.Invitation)
	}
	return out
}

// Title reads the note title, unwrapping the v2 {"value": ...} envelope.
func (n Note) Title() string {
	raw, ok := n.Content["title"]
	if !ok {
		return "Unknown"
	}
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["value"].(string); ok {
			return s
		}
	}
	return "Unknown"
}

type ProfileName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type Profile struct {
	ID              string        `json:"id"`
	PreferredEmail  string        `json:"preferredEmail,omitempty"`
	EmailsConfirmed []string      `json:"emailsConfirmed,omitempty"`
	Emails          []string      `json:"emails,omitempty"`
	Names           []ProfileName `json:"names,omitempty"`
}

type MissingReview struct {
	PaperTitle    string `json:"paper_title"`
	PaperNumber   int    `json:"paper_number"`
	PaperID       string `json:"paper_id"`
	ReviewerID    string `json:"reviewer_id"`
	ReviewerEmail string `json:"reviewer_email"`
	ReviewerName  string `json:"reviewer_name"`
	Flag          string `json:"flag,omitempty"`
}

// AssignedPaper identifies a paper by forum id and submission number.
type AssignedPaper struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
}

type NoteEdit struct {
	Invitation string   `json:"invitation"`
	Signatures []string `json:"signatures"`
	Note       NewNote  `json:"note"`
}

type NewNote struct {
	Forum      string         `json:"forum"`
	ReplyTo    string         `json:"replyto"`
	Readers    []string       `json:"readers"`
	Writers    []string       `json:"writers"`
	Signatures []string       `json:"signatures"`
	Content    map[string]any `json:"content"`
}

type CommentOutcome struct {
	PaperNumber int    `json:"paper_number"`
	Posted      bool   `json:"posted"`
	Error       string `json:"error,omitempty"`
}

type ReminderOutcome struct {
	Recipient string `json:"recipient"`
	Sent      bool   `json:"sent"`
	Error     string `json:"error,omitempty"`
}
