package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

const (
	areaChairsSuffix = "/Area_Chairs"
	flagEmergency    = "Emergency"
)

var (
	paperLevelGroup      = regexp.MustCompile(`^(Paper|Submission)\d+`)
	officialReviewInv    = regexp.MustCompile(`/-/Official_Review$`)
	emergencyDeclaration = regexp.MustCompile(`/-/Emergency_Declaration$`)
)

// ReminderConfig shapes the reminder email.
type ReminderConfig struct {
	Signature  string
	MinReviews int
}

type ReviewsUseCase struct {
	platform ports.ReviewPlatform
	mailer   ports.Mailer
	reminder ReminderConfig
}

func NewReviewsUseCase(platform ports.ReviewPlatform, mailer ports.Mailer, reminder ReminderConfig) *ReviewsUseCase {
	if reminder.MinReviews <= 0 {
		reminder.MinReviews = 3
	}
	return &ReviewsUseCase{
		platform: platform,
		mailer:   mailer,
		reminder: reminder,
	}
}

// AreaChairVenues lists venues where userID is on the venue-level area chair
// committee, most recent membership first.
func (uc *ReviewsUseCase) AreaChairVenues(ctx context.Context, userID string) ([]domain.Venue, error) {
	groups, err := uc.platform.Groups(ctx, ports.GroupQuery{Member: userID})
	if err != nil {
		return nil, fmt.Errorf("list member groups: %w", err)
	}

	seen := make(map[string]struct{})
	venues := make([]domain.Venue, 0)
	for _, g := range groups {
		if !strings.HasSuffix(g.ID, areaChairsSuffix) {
			continue
		}
		venueID := strings.TrimSuffix(g.ID, areaChairsSuffix)
		last := venueID[strings.LastIndex(venueID, "/")+1:]
		if paperLevelGroup.MatchString(last) {
			continue
		}
		if _, ok := seen[venueID]; ok {
			continue
		}
		seen[venueID] = struct{}{}
		venues = append(venues, domain.Venue{ID: venueID, GroupID: g.ID})
	}

	for i, j := 0, len(venues)-1; i < j; i, j = i+1, j-1 {
		venues[i], venues[j] = venues[j], venues[i]
	}
	return venues, nil
}

// Assignments returns the paper ids assigned to userID as area chair.
func (uc *ReviewsUseCase) Assignments(ctx context.Context, venueID, userID string) ([]string, error) {
	edges, err := uc.platform.Edges(ctx, ports.EdgeQuery{
		Invitation: venueID + "/Area_Chairs/-/Assignment",
		Tail:       userID,
	})
	if err != nil {
		return nil, fmt.Errorf("list area chair assignments: %w", err)
	}
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Head)
	}
	return ids, nil
}

// PaperInfo resolves the submission number for each paper id.
func (uc *ReviewsUseCase) PaperInfo(ctx context.Context, paperIDs []string) ([]domain.AssignedPaper, error) {
	papers := make([]domain.AssignedPaper, 0, len(paperIDs))
	for _, id := range paperIDs {
		note, err := uc.platform.Note(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get note %s: %w", id, err)
		}
		papers = append(papers, domain.AssignedPaper{ID: id, Number: note.Number})
	}
	return papers, nil
}

// MissingReviews finds, for every paper, the assigned reviewers whose
// official review has not been posted.
func (uc *ReviewsUseCase) MissingReviews(ctx context.Context, venueID string, paperIDs []string) ([]domain.MissingReview, error) {
	missing := make([]domain.MissingReview, 0)
	var reviewerIDs []string
	seen := make(map[string]struct{})

	for _, paperID := range paperIDs {
		entries, err := uc.missingForPaper(ctx, venueID, paperID)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if _, ok := seen[entry.ReviewerID]; !ok {
				seen[entry.ReviewerID] = struct{}{}
				reviewerIDs = append(reviewerIDs, entry.ReviewerID)
			}
		}
		missing = append(missing, entries...)
	}

	if len(reviewerIDs) == 0 {
		return missing, nil
	}

	emails, names := uc.resolveContacts(ctx, venueID, reviewerIDs)
	for i := range missing {
		rid := missing[i].ReviewerID
		missing[i].ReviewerEmail = lookupOr(emails, rid)
		missing[i].ReviewerName = lookupOr(names, rid)
	}
	return missing, nil
}

func (uc *ReviewsUseCase) missingForPaper(ctx context.Context, venueID, paperID string) ([]domain.MissingReview, error) {
	note, err := uc.platform.Note(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("get note %s: %w", paperID, err)
	}

	edges, err := uc.platform.Edges(ctx, ports.EdgeQuery{
		Invitation: venueID + "/Reviewers/-/Assignment",
		Head:       paperID,
	})
	if err != nil {
		return nil, fmt.Errorf("list reviewer assignments: %w", err)
	}

	forum, err := uc.platform.ForumNotes(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("list forum notes: %w", err)
	}

	anonGroups, err := uc.platform.Groups(ctx, ports.GroupQuery{
		Prefix: fmt.Sprintf("%s/Submission%d/Reviewer_", venueID, note.Number),
	})
	if err != nil {
		return nil, fmt.Errorf("list anonymous reviewer groups: %w", err)
	}
	anonToProfile := make(map[string]string, len(anonGroups))
	for _, g := range anonGroups {
		if len(g.Members) > 0 {
			anonToProfile[g.ID] = g.Members[0]
		}
	}

	reviewed := signersMatching(forum, officialReviewInv, anonToProfile)
	emergency := signersMatching(forum, emergencyDeclaration, anonToProfile)

	title := note.Title()
	var out []domain.MissingReview
	for _, e := range edges {
		rid := e.Tail
		if _, ok := reviewed[rid]; ok {
			continue
		}
		entry := domain.MissingReview{
			PaperTitle:  title,
			PaperNumber: note.Number,
			PaperID:     paperID,
			ReviewerID:  rid,
		}
		if _, ok := emergency[rid]; ok {
			entry.Flag = flagEmergency
		}
		out = append(out, entry)
	}
	return out, nil
}

func signersMatching(notes []domain.Note, invitation *regexp.Regexp, anonToProfile map[string]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, n := range notes {
		if !anyMatch(n.AllInvitations(), invitation) {
			continue
		}
		for _, sig := range n.Signatures {
			if profileID, ok := anonToProfile[sig]; ok {
				out[profileID] = struct{}{}
			}
		}
	}
	return out
}

func anyMatch(values []string, re *regexp.Regexp) bool {
	for _, v := range values {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

func (uc *ReviewsUseCase) resolveContacts(ctx context.Context, venueID string, ids []string) (map[string]string, map[string]string) {
	emails := make(map[string]string, len(ids))
	names := make(map[string]string, len(ids))

	profiles, err := uc.platform.Profiles(ctx, ids, venueID+"/-/Preferred_Emails")
	if err != nil {
		log.Warn().Err(err).Str("venue", venueID).Msg("preferred_email_profiles_failed")
		profiles, err = uc.platform.Profiles(ctx, ids, "")
		if err != nil {
			log.Warn().Err(err).Str("venue", venueID).Msg("profiles_fetch_failed")
			profiles = nil
		}
	}

	var refetch []string
	for _, p := range profiles {
		email := ProfileEmail(p)
		if email == "" {
			refetch = append(refetch, p.ID)
			email = p.ID
		}
		emails[p.ID] = email
		names[p.ID] = profileName(p)
	}

	for _, id := range refetch {
		full, err := uc.platform.Profile(ctx, id)
		if err != nil {
			log.Debug().Err(err).Str("profile", id).Msg("profile_refetch_failed")
			continue
		}
		if email := ProfileEmail(*full); email != "" {
			emails[id] = email
		}
	}

	for _, id := range ids {
		if _, ok := emails[id]; !ok && strings.Contains(id, "@") {
			emails[id] = id
			names[id] = id
		}
	}
	return emails, names
}

// ProfileEmail picks the first usable address: the preferred email, then
// confirmed emails, then any listed email. Masked addresses are skipped.
func ProfileEmail(p domain.Profile) string {
	if usableEmail(p.PreferredEmail) {
		return p.PreferredEmail
	}
	for _, e := range p.EmailsConfirmed {
		if usableEmail(e) {
			return e
		}
	}
	for _, e := range p.Emails {
		if usableEmail(e) {
			return e
		}
	}
	return ""
}

func usableEmail(s string) bool {
	return s != "" && !strings.Contains(s, "*") && strings.Contains(s, "@")
}

func profileName(p domain.Profile) string {
	if len(p.Names) > 0 {
		if name := strings.TrimSpace(p.Names[0].First + " " + p.Names[0].Last); name != "" {
			return name
		}
	}
	return p.ID
}

func lookupOr(m map[string]string, key string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return key
}

// PostAreaChairComments posts a private comment on every paper, signed with
// the area chair's anonymous id. Failures are reported per paper.
func (uc *ReviewsUseCase) PostAreaChairComments(
	ctx context.Context,
	venueID, userID, text string,
	papers []domain.AssignedPaper,
) []domain.CommentOutcome {
	outcomes := make([]domain.CommentOutcome, 0, len(papers))
	for _, paper := range papers {
		outcome := domain.CommentOutcome{PaperNumber: paper.Number}
		if err := uc.postComment(ctx, venueID, userID, text, paper); err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Posted = true
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (uc *ReviewsUseCase) postComment(ctx context.Context, venueID, userID, text string, paper domain.AssignedPaper) error {
	submission := fmt.Sprintf("%s/Submission%d", venueID, paper.Number)

	groups, err := uc.platform.Groups(ctx, ports.GroupQuery{Prefix: submission + "/Area_Chair_"})
	if err != nil {
		return fmt.Errorf("list area chair groups: %w", err)
	}
	anonID := ""
	for _, g := range groups {
		if containsString(g.Members, userID) {
			anonID = g.ID
			break
		}
	}
	if anonID == "" {
		return errors.New("could not find area chair anonymous id for this paper")
	}

	edit := domain.NoteEdit{
		Invitation: submission + "/-/Official_Comment",
		Signatures: []string{anonID},
		Note: domain.NewNote{
			Forum:   paper.ID,
			ReplyTo: paper.ID,
			Readers: []string{
				venueID + "/Program_Chairs",
				submission + "/Senior_Area_Chairs",
				submission + "/Area_Chairs",
			},
			Writers:    []string{venueID, anonID},
			Signatures: []string{anonID},
			Content: map[string]any{
				"comment": map[string]any{"value": strings.TrimSpace(text)},
			},
		},
	}
	if err := uc.platform.PostNoteEdit(ctx, edit); err != nil {
		return fmt.Errorf("post comment: %w", err)
	}
	return nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// SendReminders emails every missing reviewer, or testRecipient when set.
// A failed login yields one failed outcome per entry.
func (uc *ReviewsUseCase) SendReminders(ctx context.Context, entries []domain.MissingReview, testRecipient string) []domain.ReminderOutcome {
	outcomes := make([]domain.ReminderOutcome, 0, len(entries))
	if len(entries) == 0 {
		return outcomes
	}

	session, err := uc.mailer.Dial(ctx)
	if err != nil {
		for _, entry := range entries {
			outcomes = append(outcomes, domain.ReminderOutcome{
				Recipient: entry.ReviewerEmail,
				Error:     "SMTP login failed: " + err.Error(),
			})
		}
		return outcomes
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn().Err(err).Msg("mail_session_close_failed")
		}
	}()

	for _, entry := range entries {
		recipient := entry.ReviewerEmail
		if testRecipient != "" {
			recipient = testRecipient
		}
		outcome := domain.ReminderOutcome{Recipient: recipient}
		if err := session.Send(ctx, uc.reminderEmail(recipient, entry)); err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Sent = true
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (uc *ReviewsUseCase) reminderEmail(recipient string, entry domain.MissingReview) ports.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n\n", entry.ReviewerName)
	b.WriteString("I am reaching out about a paper for which I'm serving as an area chair (AC), and you are a reviewer.\n\n")
	fmt.Fprintf(&b, "The paper is called \"%s\"\n\n\n", entry.PaperTitle)
	fmt.Fprintf(&b, "The review deadline has passed, and I need to ensure the paper receives at least %d reviews.\n\n", uc.reminder.MinReviews)
	b.WriteString("Are you able to submit a review for this paper in the next day or two?\n\n\n")
	b.WriteString("Best,\n")
	if uc.reminder.Signature != "" {
		b.WriteString("\n" + uc.reminder.Signature)
	}

	return ports.Email{
		To:      recipient,
		Subject: "Review reminder: " + entry.PaperTitle,
		Body:    b.String(),
	}
}
