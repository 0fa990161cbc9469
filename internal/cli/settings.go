package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/wandlung/internal/types"
)

func newSettingsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change server settings",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show settings; API keys are masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.app.Usecase.Settings(cmd.Context())
			if err != nil {
				return err
			}
			printSettings(cmd, s)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings; flags that are not given keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.app.Usecase.Settings(cmd.Context())
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("openai-api-key") {
				v, _ := f.GetString("openai-api-key")
				s.OpenAIAPIKey = optional(v)
			}
			if f.Changed("anthropic-api-key") {
				v, _ := f.GetString("anthropic-api-key")
				s.AnthropicAPIKey = optional(v)
			}
			if f.Changed("max-video-height") {
				s.MaxVideoHeight, _ = f.GetInt("max-video-height")
			}
			if f.Changed("he-aac-v2") {
				s.UseHEAACV2, _ = f.GetBool("he-aac-v2")
			}

			saved, err := e.app.Usecase.SaveSettings(cmd.Context(), s)
			if err != nil {
				return err
			}
			printSettings(cmd, saved)
			return nil
		},
	}
	set.Flags().String("openai-api-key", "", "OpenAI API key, empty to clear")
	set.Flags().String("anthropic-api-key", "", "Anthropic API key, empty to clear")
	set.Flags().Int("max-video-height", 720, fmt.Sprintf("Download resolution, one of %v", types.VideoHeights))
	set.Flags().Bool("he-aac-v2", true, "Encode audio as HE-AAC v2")

	cmd.AddCommand(get, set)
	return cmd
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func printSettings(cmd *cobra.Command, s types.Settings) {
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintf(w, "openai_api_key\t%s\n", mask(s.OpenAIAPIKey))
	fmt.Fprintf(w, "anthropic_api_key\t%s\n", mask(s.AnthropicAPIKey))
	fmt.Fprintf(w, "max_video_height\t%d\n", s.MaxVideoHeight)
	fmt.Fprintf(w, "use_he_aac_v2\t%t\n", s.UseHEAACV2)
	_ = w.Flush()
}
