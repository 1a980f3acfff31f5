package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdLookup() *cli.Command {
	var channel string
	var user string
	var mentionCfg mentionConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "channel",
			Usage:       "Channel the text is treated as posted in (blackout scope)",
			Value:       "cli",
			Destination: &channel,
		},
		&cli.StringFlag{
			Name:        "user",
			Usage:       "Sender name the text is treated as posted by",
			Value:       "atlas-cli",
			Destination: &user,
		},
	}
	flags = append(flags, mentionCfg.flags()...)

	return &cli.Command{
		Name:      "lookup",
		Aliases:   []string{"l"},
		Usage:     "Print the reply atlas would post for the given text",
		ArgsUsage: "<text...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return goerr.New("text is required")
			}

			uc, repo, err := mentionCfg.build(ctx)
			if err != nil {
				return err
			}
			defer closeRepository(repo)

			return printReply(os.Stdout, uc.Lookup(ctx, channel, user, text))
		},
	}
}

func printReply(w io.Writer, reply *model.Reply) error {
	if reply.IsEmpty() {
		if _, err := color.New(color.FgYellow).Fprintln(w, "No issues to report"); err != nil {
			return goerr.Wrap(err, "failed to write output")
		}
		return nil
	}

	header := color.New(color.FgCyan, color.Bold)
	for i, block := range reply.Blocks {
		if _, err := header.Fprintf(w, "[%d/%d]\n", i+1, len(reply.Blocks)); err != nil {
			return goerr.Wrap(err, "failed to write output")
		}
		if _, err := fmt.Fprintln(w, block); err != nil {
			return goerr.Wrap(err, "failed to write output")
		}
	}
	return nil
}
