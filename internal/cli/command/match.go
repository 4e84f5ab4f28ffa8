package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cricket-go/internal/cli/input"
	"github.com/yndnr/cricket-go/internal/cli/output"
	"github.com/yndnr/cricket-go/internal/core/domain"
)

// MatchCommand returns the match subcommand group.
func MatchCommand() *cli.Command {
	return &cli.Command{
		Name:    "match",
		Aliases: []string{"matches"},
		Usage:   "Create, list and manage matches",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Schedule a new match",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Match format (" + strings.Join(domain.MatchFormats, ", ") + ")",
					},
					&cli.StringFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Date and time, e.g. 2026-01-31 or 2026-01-31T14:30",
					},
					&cli.StringFlag{
						Name:    "location",
						Aliases: []string{"l"},
						Usage:   "Ground or venue",
					},
				},
				Action: matchCreate,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List matches",
				Action:  matchList,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a match",
				ArgsUsage: "MATCH_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip confirmation",
					},
				},
				Action: matchDelete,
			},
			{
				Name:      "score",
				Usage:     "Show the live score of a match",
				ArgsUsage: "MATCH_ID",
				Action:    matchScore,
			},
			{
				Name:      "toss",
				Usage:     "Toss for a match",
				ArgsUsage: "MATCH_ID",
				Action:    matchToss,
			},
		},
	}
}

func matchCreate(c *cli.Context) error {
	const fallback = "Could not create match"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	form := input.MatchForm{
		Format:   c.String("format"),
		Date:     c.String("date"),
		Location: c.String("location"),
	}
	if err := env.fill(
		promptField{&form.Format, "Format (" + strings.Join(domain.MatchFormats, "/") + ")", domain.DefaultMatchFormat},
		promptField{&form.Date, "Date (YYYY-MM-DD HH:MM)", ""},
		promptField{&form.Location, "Location", ""},
	); err != nil {
		return err
	}
	if strings.TrimSpace(form.Format) == "" {
		form.Format = domain.DefaultMatchFormat
	}
	req, err := form.Request()
	if err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.requireSession(ctx); err != nil {
		return fail(err, fallback)
	}

	var match *domain.Match
	err = env.spin("Creating match", func() error {
		match, err = env.matches.CreateMatch(ctx, req)
		return err
	})
	if err != nil {
		return fail(err, fallback)
	}

	when := req.Date
	if t, err := domain.ParseMatchDate(req.Date); err == nil {
		when = t.Local().Format(matchTimeLayout)
	}
	return env.Done(fmt.Sprintf("Your %s match on %s at %q is live!", req.Format, when, req.Location), match)
}

func matchList(c *cli.Context) error {
	const fallback = "Could not load matches"
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.open(ctx); err != nil {
		return fail(err, fallback)
	}

	var matches []domain.Match
	err = env.spin("Loading matches", func() error {
		matches, err = env.matches.ListMatches(ctx)
		return err
	})
	if err != nil {
		return fail(err, fallback)
	}

	if env.Format() == output.FormatTable && len(matches) == 0 {
		_, err := fmt.Fprintln(env.out, "No matches yet.")
		return err
	}
	if env.Format() != output.FormatTable {
		return env.Render(matches)
	}
	return env.Render(matchTable{matches: matches, now: env.now()})
}

func matchDelete(c *cli.Context) error {
	const fallback = "Could not delete match"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	id, err := requireArg(c, "id")
	if err != nil {
		return fail(err, fallback)
	}
	if !c.Bool("yes") && !env.Prompter().Confirm(fmt.Sprintf("Delete match %s?", id)) {
		return env.Done("Cancelled.", nil)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.requireSession(ctx); err != nil {
		return fail(err, fallback)
	}

	ack, err := env.matches.DeleteMatch(ctx, id)
	if err != nil {
		return fail(err, fallback)
	}
	msg := ack.Message()
	if msg == "" {
		msg = "Match deleted."
	}
	return env.Done(msg, ackData(ack))
}

func matchScore(c *cli.Context) error {
	const fallback = "Could not load score"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	id, err := requireArg(c, "id")
	if err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.open(ctx); err != nil {
		return fail(err, fallback)
	}

	score, err := env.matches.GetMatchScore(ctx, id)
	if err != nil {
		return fail(err, fallback)
	}
	return env.Render(score)
}

func matchToss(c *cli.Context) error {
	const fallback = "Could not toss"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	id, err := requireArg(c, "id")
	if err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.requireSession(ctx); err != nil {
		return fail(err, fallback)
	}

	result, err := env.matches.Toss(ctx, id)
	if err != nil {
		return fail(err, fallback)
	}
	return env.Render(result)
}

// requireArg returns the first positional argument, validated as a
// required field named field.
func requireArg(c *cli.Context, field string) (string, error) {
	form := input.IDForm{ID: strings.TrimSpace(c.Args().First())}
	if err := input.Validate(form); err != nil {
		return "", domain.NewValidationError(field, domain.ReasonRequired)
	}
	return form.ID, nil
}

// matchTimeLayout is the local date format shown for matches.
const matchTimeLayout = "Mon Jan 2 2006 15:04"

// matchTable renders matches with their status badge.
type matchTable struct {
	matches []domain.Match
	now     time.Time
}

func (m matchTable) Table() *output.Table {
	t := &output.Table{}
	t.SetHeaders("ID", "FORMAT", "DATE", "LOCATION", "STATUS")
	for _, match := range m.matches {
		date := match.Date
		if when, err := match.When(); err == nil {
			date = when.In(m.now.Location()).Format(matchTimeLayout)
		}
		t.AddRow(match.ID, match.Format, date, match.Location, string(match.Status(m.now)))
	}
	return t
}
