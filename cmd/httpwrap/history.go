package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived exchanges, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := a.openArchive(cmd.Context(), a.cfg.Archive.Path)
			if err != nil {
				return errors.Wrap(err, "opening archive")
			}
			defer archive.Close()

			exchanges, err := archive.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tSTATUS\tMETHOD\tURI\tID")
			for _, ex := range exchanges {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					ex.CreatedAt.Local().Format(time.DateTime), ex.StatusCode, ex.Method, ex.URI, ex.ID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of exchanges to list, 0 for all")
	return cmd
}
