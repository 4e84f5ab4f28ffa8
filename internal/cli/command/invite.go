package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cricket-go/internal/cli/input"
	"github.com/yndnr/cricket-go/internal/cli/output"
	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/core/service"
)

// InviteCommand returns the invite subcommand group.
func InviteCommand() *cli.Command {
	return &cli.Command{
		Name:    "invite",
		Aliases: []string{"invites"},
		Usage:   "Invite players and answer invitations",
		Subcommands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "Invite a player to a match",
				ArgsUsage: "MATCH_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Username to invite",
					},
				},
				Action: inviteSend,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List your invitations",
				Action:  inviteList,
			},
			{
				Name:      "respond",
				Usage:     "Accept or decline an invitation",
				ArgsUsage: "INVITE_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "accept",
						Usage: "Accept the invitation",
					},
					&cli.BoolFlag{
						Name:  "decline",
						Usage: "Decline the invitation",
					},
				},
				Action: inviteRespond,
			},
		},
	}
}

func inviteSend(c *cli.Context) error {
	const fallback = "Could not send invite"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	req := service.SendInviteRequest{
		MatchID:  c.Args().First(),
		Username: c.String("user"),
	}
	if err := env.fill(
		promptField{&req.MatchID, "Match ID", ""},
		promptField{&req.Username, "Username", ""},
	); err != nil {
		return err
	}
	if err := input.Validate(req); err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.requireSession(ctx); err != nil {
		return fail(err, fallback)
	}

	ack, err := env.invites.SendInvite(ctx, req.MatchID, req.Username)
	if err != nil {
		return fail(err, fallback)
	}
	msg := ack.Message()
	if msg == "" {
		msg = fmt.Sprintf("Invited %s.", req.Username)
	}
	return env.Done(msg, ackData(ack))
}

func inviteList(c *cli.Context) error {
	const fallback = "Could not load invites"
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.requireSession(ctx); err != nil {
		return fail(err, fallback)
	}

	invites, err := env.invites.ListInvites(ctx)
	if err != nil {
		return fail(err, fallback)
	}
	if env.Format() != output.FormatTable {
		return env.Render(invites)
	}
	if len(invites) == 0 {
		_, err := fmt.Fprintln(env.out, "No invitations.")
		return err
	}
	return env.Render(inviteTable(invites))
}

func inviteRespond(c *cli.Context) error {
	const fallback = "Could not respond to invite"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	accept, decline := c.Bool("accept"), c.Bool("decline")
	if accept == decline {
		return fail(domain.NewValidationError("response", "must be either --accept or --decline"), fallback)
	}
	req := service.RespondInviteRequest{InviteID: c.Args().First(), Accept: accept}
	if err := input.Validate(req); err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.requireSession(ctx); err != nil {
		return fail(err, fallback)
	}

	ack, err := env.invites.RespondInvite(ctx, req.InviteID, req.Accept)
	if err != nil {
		return fail(err, fallback)
	}
	msg := ack.Message()
	if msg == "" {
		msg = "Invite declined."
		if accept {
			msg = "Invite accepted."
		}
	}
	return env.Done(msg, ackData(ack))
}

type inviteTable []domain.Invite

func (t inviteTable) Table() *output.Table {
	table := &output.Table{}
	table.SetHeaders("ID", "MATCH", "FROM", "STATUS")
	for _, inv := range t {
		table.AddRow(inv.ID, inv.MatchID, inv.From, inv.Status)
	}
	return table
}
