package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/daily-motivation/internal/app"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "motivate",
		Short: "Show a motivational quote and manage the ones you like",
		Long: `Show a motivational quote and keep a collection of the ones you like.

Liked quotes are saved to the configured SQLite file. When it cannot be
written they are kept in memory for this run only, and a warning says so.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.open(cmd.Context())
		},
	}

	root.SetOut(s.out)
	root.SetErr(s.errOut)

	root.PersistentFlags().StringVarP(&s.profile, "profile", "p", s.profile, "Configuration profile (configs/<profile>.yaml)")
	root.PersistentFlags().StringVar(&s.configDir, "config-dir", s.configDir, "Directory holding base.yaml and profile files")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newQuoteCmd(s),
		newListCmd(s),
		newRemoveCmd(s),
		newClearCmd(s),
		newStatusCmd(s),
	)

	return root
}

func newQuoteCmd(s *session) *cobra.Command {
	var like bool

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Show a new quote",
		Long: `Show a new quote from the quote API, or a built-in one when the API
cannot be reached. With --like the quote is added to your collection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := s.stack.Service

			quote, err := svc.FetchNewQuote(cmd.Context())
			if err != nil {
				return err
			}

			if like && !svc.IsCurrentLiked() {
				if _, err := svc.ToggleLike(cmd.Context(), quote); err != nil {
					return err
				}
			}

			printQuote(cmd.OutOrStdout(), quote, svc.IsCurrentLiked())

			return nil
		},
	}

	cmd.Flags().BoolVarP(&like, "like", "l", false, "Add the quote to your collection")

	return cmd
}

func newListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List liked quotes, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), app.FormatCollection(s.stack.Service.GetCollection()))
			return nil
		},
	}
}

func newRemoveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove liked quotes by ID",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := s.stack.Service

			for _, id := range args {
				liked := slices.ContainsFunc(svc.GetCollection(), func(q domain.Quote) bool { return q.ID == id })
				if !liked {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is not in your collection\n", id)
					continue
				}

				if err := svc.RemoveFromCollection(cmd.Context(), id); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func newClearCmd(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every liked quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := s.stack.Service

			n := len(svc.GetCollection())
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), app.MsgEmptyCollection)
				return nil
			}

			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Remove all %d liked quotes?", n)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing removed.")
				return nil
			}

			return svc.ClearCollection(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show storage, collection size, and dependency health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			svc := s.stack.Service

			fmt.Fprintln(out, labelStyle.Render("storage"), svc.StorageKind())
			fmt.Fprintln(out, labelStyle.Render("liked"), len(svc.GetCollection()))

			result := s.stack.Health.CheckAll(cmd.Context())
			fmt.Fprintln(out, labelStyle.Render("health"), result.Status)

			names := make([]string, 0, len(result.Checks))
			for name := range result.Checks {
				names = append(names, name)
			}
			slices.Sort(names)

			for _, name := range names {
				check := result.Checks[name]
				line := fmt.Sprintf("  %s: %s", name, check.Status)
				if check.Message != "" {
					line += " (" + check.Message + ")"
				}
				fmt.Fprintln(out, line)
			}

			flags := s.stack.Flags.All()
			keys := make([]string, 0, len(flags))
			for k := range flags {
				keys = append(keys, k)
			}
			slices.Sort(keys)

			for _, k := range keys {
				fmt.Fprintln(out, labelStyle.Render("flag"), k, flags[k])
			}

			return nil
		},
	}
}

func printQuote(w io.Writer, q domain.Quote, liked bool) {
	fmt.Fprintln(w, quoteStyle.Render("“"+q.Content+"”"))

	author := "- " + q.Author
	if liked {
		author += "  " + likedStyle.Render("♥ liked")
	}
	if app.IsFallbackQuote(q.ID) {
		author += "  " + warningStyle.Render("offline")
	}
	fmt.Fprintln(w, authorStyle.Render(author))
	fmt.Fprintln(w, authorStyle.Render("id: "+q.ID))
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
