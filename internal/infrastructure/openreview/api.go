package openreview

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

type apiGroup struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

type apiEdge struct {
	Head string `json:"head"`
	Tail string `json:"tail"`
}

type apiProfile struct {
	ID      string `json:"id"`
	Content struct {
		PreferredEmail  string   `json:"preferredEmail"`
		EmailsConfirmed []string `json:"emailsConfirmed"`
		Emails          []string `json:"emails"`
		Names           []struct {
			First string `json:"first"`
			Last  string `json:"last"`
		} `json:"names"`
	} `json:"content"`
}

func (p apiProfile) toDomain() domain.Profile {
	out := domain.Profile{
		ID:              p.ID,
		PreferredEmail:  p.Content.PreferredEmail,
		EmailsConfirmed: p.Content.EmailsConfirmed,
		Emails:          p.Content.Emails,
	}
	for _, n := range p.Content.Names {
		out.Names = append(out.Names, domain.ProfileName{First: n.First, Last: n.Last})
	}
	return out
}

func (c *Client) Groups(ctx context.Context, query ports.GroupQuery) ([]domain.Group, error) {
	q := url.Values{}
	if query.Member != "" {
		q.Set("member", query.Member)
	}
	if query.Prefix != "" {
		q.Set("prefix", query.Prefix)
	}
	if len(q) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "openreview groups", fmt.Errorf("member or prefix required"))
	}

	var resp struct {
		Groups []apiGroup `json:"groups"`
	}
	if err := c.call(ctx, http.MethodGet, "/groups", q, nil, &resp, "groups"); err != nil {
		return nil, err
	}
	out := make([]domain.Group, 0, len(resp.Groups))
	for _, g := range resp.Groups {
		out = append(out, domain.Group{ID: g.ID, Members: g.Members})
	}
	return out, nil
}

// Edges pages through every edge matching query.
func (c *Client) Edges(ctx context.Context, query ports.EdgeQuery) ([]domain.Edge, error) {
	if query.Invitation == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "openreview edges", fmt.Errorf("invitation required"))
	}
	base := url.Values{}
	base.Set("invitation", query.Invitation)
	if query.Head != "" {
		base.Set("head", query.Head)
	}
	if query.Tail != "" {
		base.Set("tail", query.Tail)
	}

	var out []domain.Edge
	for offset := 0; ; offset += pageSize {
		q := paged(base, offset)
		var resp struct {
			Edges []apiEdge `json:"edges"`
		}
		if err := c.call(ctx, http.MethodGet, "/edges", q, nil, &resp, "edges"); err != nil {
			return nil, err
		}
		for _, e := range resp.Edges {
			out = append(out, domain.Edge{Head: e.Head, Tail: e.Tail})
		}
		if len(resp.Edges) < pageSize {
			return out, nil
		}
	}
}

func (c *Client) Note(ctx context.Context, id string) (*domain.Note, error) {
	q := url.Values{}
	q.Set("id", id)
	var resp struct {
		Notes []domain.Note `json:"notes"`
	}
	if err := c.call(ctx, http.MethodGet, "/notes", q, nil, &resp, "note"); err != nil {
		return nil, err
	}
	if len(resp.Notes) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "openreview note", fmt.Errorf("note %s not found", id))
	}
	return &resp.Notes[0], nil
}

// ForumNotes pages through every note posted in a forum.
func (c *Client) ForumNotes(ctx context.Context, forum string) ([]domain.Note, error) {
	base := url.Values{}
	base.Set("forum", forum)

	var out []domain.Note
	for offset := 0; ; offset += pageSize {
		var resp struct {
			Notes []domain.Note `json:"notes"`
		}
		if err := c.call(ctx, http.MethodGet, "/notes", paged(base, offset), nil, &resp, "forum_notes"); err != nil {
			return nil, err
		}
		out = append(out, resp.Notes...)
		if len(resp.Notes) < pageSize {
			return out, nil
		}
	}
}

// Profiles batch-resolves tilde ids and email ids. When an invitation is
// given, preferred emails published on that venue's edges fill PreferredEmail.
func (c *Client) Profiles(ctx context.Context, ids []string, preferredEmailsInvitation string) ([]domain.Profile, error) {
	var tildeIDs, emails []string
	for _, id := range ids {
		if strings.Contains(id, "@") {
			emails = append(emails, id)
		} else {
			tildeIDs = append(tildeIDs, id)
		}
	}

	var out []domain.Profile
	for _, batch := range []struct {
		key    string
		values []string
	}{{key: "ids", values: tildeIDs}, {key: "emails", values: emails}} {
		if len(batch.values) == 0 {
			continue
		}
		var resp struct {
			Profiles []apiProfile `json:"profiles"`
		}
		payload := map[string][]string{batch.key: batch.values}
		if err := c.call(ctx, http.MethodPost, "/profiles/search", nil, payload, &resp, "profiles"); err != nil {
			return nil, err
		}
		for _, p := range resp.Profiles {
			out = append(out, p.toDomain())
		}
	}

	if preferredEmailsInvitation == "" || len(out) == 0 {
		return out, nil
	}

	edges, err := c.Edges(ctx, ports.EdgeQuery{Invitation: preferredEmailsInvitation})
	if err != nil {
		return nil, fmt.Errorf("preferred emails: %w", err)
	}
	preferred := make(map[string]string, len(edges))
	for _, e := range edges {
		preferred[e.Head] = e.Tail
	}
	for i := range out {
		if email, ok := preferred[out[i].ID]; ok && email != "" {
			out[i].PreferredEmail = email
		}
	}
	return out, nil
}

func (c *Client) Profile(ctx context.Context, id string) (*domain.Profile, error) {
	q := url.Values{}
	q.Set("id", id)
	var resp struct {
		Profiles []apiProfile `json:"profiles"`
	}
	if err := c.call(ctx, http.MethodGet, "/profiles", q, nil, &resp, "profile"); err != nil {
		return nil, err
	}
	if len(resp.Profiles) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "openreview profile", fmt.Errorf("profile %s not found", id))
	}
	p := resp.Profiles[0].toDomain()
	return &p, nil
}

func (c *Client) PostNoteEdit(ctx context.Context, edit domain.NoteEdit) error {
	return c.call(ctx, http.MethodPost, "/notes/edits", nil, edit, nil, "post_note_edit")
}

func paged(base url.Values, offset int) url.Values {
	q := url.Values{}
	for k, v := range base {
		q[k] = append([]string(nil), v...)
	}
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("offset", strconv.Itoa(offset))
	return q
}
