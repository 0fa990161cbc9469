package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/wandlung/internal/domain/subtitles"
	"github.com/forPelevin/wandlung/internal/domain/timerange"
	"github.com/forPelevin/wandlung/internal/usecase"
)

func newSubtitlesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtitles",
		Aliases: []string{"subs"},
		Short:   "Transcribe, translate, edit and burn subtitles",
	}
	cmd.AddCommand(
		newSubtitlesListCmd(e),
		newSubtitlesShowCmd(e),
		newSubtitlesExportCmd(e),
		newSubtitlesEditCmd(e),
		newSubtitlesTranscribeCmd(e),
		newSubtitlesTranslateCmd(e),
		newSubtitlesBurnCmd(e),
		newSubtitlesDeleteCmd(e),
		newSubtitlesPlayCmd(e),
	)
	return cmd
}

func newSubtitlesListCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subtitles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			p := e.app.Subtitles
			if err := p.SetPage(cmd.Context(), page); err != nil {
				return pageErr(err)
			}
			v := p.View()
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tVIDEO\tLANGUAGE\tSOURCE\tUPDATED")
			for _, s := range v.Items {
				source := "translated"
				if s.IsTranscribed {
					source = "transcribed"
				}
				title := s.VideoTitle
				if title == "" {
					title = s.VideoID
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, title, s.Language, source, s.Updated.Local().Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			footer(cmd.OutOrStdout(), v, "subtitles")
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "Page number, starting at 1")
	return cmd
}

func newSubtitlesShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <subtitle-id>",
		Short: "Print subtitle content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sub, err := e.app.Usecase.LoadSubtitle(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s, %s, %d cues\n", sub.VideoTitle, sub.Language, subtitles.CueCount(sub.Content))
			_, err = io.WriteString(cmd.OutOrStdout(), sub.Content)
			return err
		},
	}
}

func newSubtitlesExportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <subtitle-id>",
		Short: "Write a subtitle as SRT, or WebVTT with --vtt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			vtt, _ := cmd.Flags().GetBool("vtt")
			outPath, _ := cmd.Flags().GetString("out")

			var text string
			if vtt {
				text, err = e.app.Usecase.SubtitleVTT(cmd.Context(), id)
			} else {
				sub, lerr := e.app.Usecase.LoadSubtitle(cmd.Context(), id)
				text, err = sub.Content, lerr
			}
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			return os.WriteFile(outPath, []byte(text), 0o644)
		},
	}
	cmd.Flags().Bool("vtt", false, "Export WebVTT as rendered by the server")
	cmd.Flags().String("out", "", "Output file (default stdout)")
	return cmd
}

func newSubtitlesEditCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <subtitle-id>",
		Short: "Replace subtitle content from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return errors.New("--file is required (use - for stdin)")
			}

			p := e.app.Subtitles
			current, err := p.OpenEdit(cmd.Context(), id)
			if err != nil {
				return pageErr(err)
			}
			content, err := readInput(cmd, file)
			if err != nil {
				_ = p.Close(cmd.Context())
				return err
			}
			if content == current.Content {
				fmt.Fprintln(cmd.ErrOrStderr(), "content unchanged")
				return pageErr(p.Close(cmd.Context()))
			}
			return pageErr(p.SubmitEdit(cmd.Context(), content))
		},
	}
	cmd.Flags().String("file", "", "File with the new content, - for stdin")
	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func newSubtitlesTranscribeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe [video-id or title]",
		Short: "Transcribe a recent video; without an argument, list the choices",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := e.app.Subtitles
			videos, err := p.OpenTranscribe(cmd.Context())
			if err != nil {
				return pageErr(err)
			}
			if len(args) == 0 {
				w := newTable(cmd.OutOrStdout())
				fmt.Fprintln(w, "ID\tTITLE\tDURATION")
				for _, v := range videos {
					fmt.Fprintf(w, "%s\t%s\t%s\n", v.VideoID, v.Title, timerange.Format(v.DurationSeconds()))
				}
				return w.Flush()
			}
			return pageErr(p.SubmitTranscribe(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

func newSubtitlesTranslateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <subtitle-id>",
		Short: "Translate a subtitle into another language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			lang, _ := cmd.Flags().GetString("lang")
			temp, _ := cmd.Flags().GetString("temperature")

			p := e.app.Subtitles
			p.OpenTranslate(id)
			return pageErr(p.SubmitTranslate(cmd.Context(), usecase.TranslateForm{TargetLanguage: lang, Temperature: temp}))
		},
	}
	cmd.Flags().String("lang", "", "Target language")
	cmd.Flags().String("temperature", "", "Sampling temperature between 0 and 1")
	return cmd
}

func newSubtitlesBurnCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "burn <subtitle-id>",
		Short: "Render the video with the subtitle burned in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")

			p := e.app.Subtitles
			p.OpenBurn(id)
			res, err := p.SubmitBurn(cmd.Context(), start, end)
			if err != nil {
				return pageErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.File.Path)
			return nil
		},
	}
	cmd.Flags().String("start", "", "Clip start as M:SS (default: beginning)")
	cmd.Flags().String("end", "", "Clip end as M:SS (default: end of video)")
	return cmd
}

func newSubtitlesDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <subtitle-id>",
		Short: "Delete a subtitle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p := e.app.Subtitles
			p.OpenDeleteSubtitle(id)
			return pageErr(p.ConfirmDeleteSubtitle(cmd.Context()))
		},
	}
}

func newSubtitlesPlayCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <subtitle-id>",
		Short: "Play the video with the subtitle in the media player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page, _ := cmd.Flags().GetInt("page")

			p := e.app.Subtitles
			if err := p.SetPage(cmd.Context(), page); err != nil {
				return pageErr(err)
			}
			src, err := p.OpenPlayer(cmd.Context(), id)
			if err != nil {
				return pageErr(err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "playing %s\n", src.Video.Title)
			playErr := p.Play(cmd.Context())
			// ctx is already cancelled when playback ended on SIGINT
			if err := p.Close(context.WithoutCancel(cmd.Context())); err != nil && playErr == nil {
				playErr = err
			}
			return pageErr(playErr)
		},
	}
	cmd.Flags().Int("page", 1, "List page the subtitle is on")
	return cmd
}
