package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kirillkom/papercheck/internal/bootstrap"
	"github.com/kirillkom/papercheck/internal/config"
	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
)

func newReviewTracker(cfg config.Config) (ports.ReviewTracker, error) {
	return bootstrap.NewReviews(cfg)
}

func runReviews(ctx context.Context, env *environment, args []string) (int, error) {
	fs := flag.NewFlagSet("reviews", flag.ContinueOnError)
	userID := fs.String("user", "", "OpenReview profile id of the area chair, e.g. ~Jane_Doe1")
	venueID := fs.String("venue", "", "venue id; defaults to the most recent area chair venue")
	comment := fs.String("comment", "", "post this text as an area chair comment on every assigned paper")
	remind := fs.Bool("remind", false, "email a reminder to every reviewer with a missing review")
	testEmail := fs.String("test-email", "", "send every reminder to this address instead")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return exitInvocation, err
	}
	if len(positional) != 0 {
		return exitInvocation, usagef("unexpected arguments: %s", strings.Join(positional, " "))
	}
	if strings.TrimSpace(*userID) == "" {
		return exitInvocation, usagef("-user is required")
	}

	newTracker := env.reviews
	if newTracker == nil {
		newTracker = newReviewTracker
	}
	tracker, err := newTracker(env.cfg)
	if err != nil {
		return exitConfigError, err
	}

	venue := *venueID
	if venue == "" {
		venues, err := tracker.AreaChairVenues(ctx, *userID)
		if err != nil {
			return exitInternal, err
		}
		if len(venues) == 0 {
			fmt.Fprintf(env.stdout, "No area chair venues found for %s\n", *userID)
			return exitOK, nil
		}
		fmt.Fprintln(env.stdout, "Area chair venues:")
		for _, v := range venues {
			fmt.Fprintf(env.stdout, "  %s\n", v.ID)
		}
		venue = venues[0].ID
		fmt.Fprintf(env.stdout, "Using venue %s\n", venue)
	}

	paperIDs, err := tracker.Assignments(ctx, venue, *userID)
	if err != nil {
		return exitInternal, err
	}
	if len(paperIDs) == 0 {
		fmt.Fprintf(env.stdout, "No papers assigned to %s in %s\n", *userID, venue)
		return exitOK, nil
	}
	fmt.Fprintf(env.stdout, "%d assigned paper(s)\n", len(paperIDs))

	missing, err := tracker.MissingReviews(ctx, venue, paperIDs)
	if err != nil {
		return exitInternal, err
	}
	writeMissingReviews(env.stdout, missing)

	code := exitOK
	if *comment != "" {
		papers, err := tracker.PaperInfo(ctx, paperIDs)
		if err != nil {
			return exitInternal, err
		}
		for _, o := range tracker.PostAreaChairComments(ctx, venue, *userID, *comment, papers) {
			if o.Posted {
				fmt.Fprintf(env.stdout, "Comment posted on paper %d\n", o.PaperNumber)
				continue
			}
			fmt.Fprintf(env.stdout, "Comment failed on paper %d: %s\n", o.PaperNumber, o.Error)
			code = exitHasErrors
		}
	}

	if *remind {
		entries := make([]domain.MissingReview, 0, len(missing))
		for _, m := range missing {
			if m.Flag == "" {
				entries = append(entries, m)
			}
		}
		for _, o := range tracker.SendReminders(ctx, entries, *testEmail) {
			if o.Sent {
				fmt.Fprintf(env.stdout, "Reminder sent to %s\n", o.Recipient)
				continue
			}
			fmt.Fprintf(env.stdout, "Reminder to %s failed: %s\n", o.Recipient, o.Error)
			code = exitHasErrors
		}
	}
	return code, nil
}

func writeMissingReviews(w io.Writer, missing []domain.MissingReview) {
	if len(missing) == 0 {
		fmt.Fprintln(w, "No missing reviews")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAPER\tTITLE\tREVIEWER\tEMAIL\tFLAG")
	for _, m := range missing {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.PaperNumber, m.PaperTitle, m.ReviewerName, m.ReviewerEmail, m.Flag)
	}
	_ = tw.Flush()
}
