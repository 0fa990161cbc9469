package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/wandlung/internal/domain/timerange"
)

func newVideosCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List, add and delete source videos",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			p := e.app.Videos
			if err := p.SetPage(cmd.Context(), page); err != nil {
				return pageErr(err)
			}
			v := p.View()
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tTITLE\tDURATION\tSIZE")
			for _, vid := range v.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\n", vid.VideoID, vid.Title, timerange.Format(vid.DurationSeconds()), vid.Width, vid.Height)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			footer(cmd.OutOrStdout(), v, "videos")
			return nil
		},
	}
	list.Flags().Int("page", 1, "Page number, starting at 1")

	add := &cobra.Command{
		Use:   "add <url>",
		Short: "Ask the server to download a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := e.app.Videos
			p.OpenAddVideo()
			if err := p.SubmitAddVideo(cmd.Context(), args[0]); err != nil {
				return pageErr(err)
			}
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <video-id>",
		Short: "Delete a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := e.app.Videos
			p.OpenDeleteVideo(args[0])
			if err := p.ConfirmDeleteVideo(cmd.Context()); err != nil {
				return pageErr(err)
			}
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}
