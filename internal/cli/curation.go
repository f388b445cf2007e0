package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

var (
	curationVideos []string
	curationWatch  bool
)

var curationCmd = &cobra.Command{
	Use:   "curation",
	Short: "Turn research into creative briefs",
	Long: `Curation jobs turn the videos of a completed research job into a
creative brief: hook, narrative, music mood, palette and storyboard.

Examples:
  ymf curation list
  ymf curation start 1a2b3c4d --videos v1,v2 --watch
  ymf curation show 5e6f7a8b`,
}

var curationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List curation jobs",
	Args:  cobra.NoArgs,
	RunE:  runCurationList,
}

var curationShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a curation job and its creative brief",
	Args:  cobra.ExactArgs(1),
	RunE:  runCurationShow,
}

var curationStartCmd = &cobra.Command{
	Use:   "start <research-job-id>",
	Short: "Start curation from a research job",
	Long: `Start a curation job from a research job. Without --videos the
backend uses every video the research job discovered.`,
	Args: cobra.ExactArgs(1),
	RunE: runCurationStart,
}

func init() {
	curationStartCmd.Flags().StringSliceVar(&curationVideos, "videos", nil, "video ids to curate (comma separated)")
	curationStartCmd.Flags().BoolVarP(&curationWatch, "watch", "w", false, "follow the job until it finishes")

	curationCmd.AddCommand(curationListCmd)
	curationCmd.AddCommand(curationShowCmd)
	curationCmd.AddCommand(curationStartCmd)
}

func runCurationList(cmd *cobra.Command, args []string) error {
	jobs, err := apiClient.Curation().ListJobs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list curation jobs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No curation jobs found")
		return nil
	}

	fmt.Fprintf(out, "%-12s %-18s %-12s %-7s %s\n", "ID", "STATUS", "RESEARCH", "SCENES", "TITLE")
	fmt.Fprintln(out, "------------------------------------------------------------------------")
	for _, j := range jobs {
		title := j.Title()
		if title == "" && !j.Status.IsTerminal() {
			title = "Initializing Brief..."
		}
		fmt.Fprintf(out, "%-12s %-18s %-12s %-7d %s\n",
			models.JobLabel(j.ID), models.StatusLabel(string(j.Status)), models.JobLabel(j.ResearchJobID), j.SceneCount(), title)
	}
	return nil
}

func runCurationShow(cmd *cobra.Command, args []string) error {
	job, err := apiClient.Curation().GetJob(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get curation job: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Curation: %s\n", job.ID)
	fmt.Fprintf(out, "  Research: %s\n", job.ResearchJobID)
	fmt.Fprintf(out, "  Status: %s\n", models.StatusLabel(string(job.Status)))

	switch {
	case job.Status.Failed():
		reason := job.FailureReason()
		if reason == "" {
			reason = "Unknown error occurred."
		}
		fmt.Fprintf(out, "\nGeneration Failed: %s\n", reason)
		return nil
	case job.CreativeBrief == nil:
		fmt.Fprintln(out, "\nGenerating Creative Brief...")
		return nil
	}

	b := job.CreativeBrief
	fmt.Fprintf(out, "\n%s\n", b.Title)
	fmt.Fprintf(out, "  Hook: %s\n", b.Hook)
	fmt.Fprintf(out, "  Narrative: %s\n", b.NarrativeGoal)
	fmt.Fprintf(out, "  Music mood: %s\n", b.MusicMood)
	if len(b.ColorPalette) > 0 {
		fmt.Fprintf(out, "  Palette: %s\n", strings.Join(b.ColorPalette, " "))
	}

	scenes := b.Scenes()
	fmt.Fprintf(out, "\nStoryboard (%d scenes):\n", len(scenes))
	for _, s := range scenes {
		fmt.Fprintf(out, "  Scene %d  %s  %s\n", s.SceneIndex, s.Pacing, formatSeconds(s.Duration))
		fmt.Fprintf(out, "    Narration: %s\n", s.Narration)
		fmt.Fprintf(out, "    Visual: %s\n", s.VisualPrompt)
	}
	return nil
}

func runCurationStart(cmd *cobra.Command, args []string) error {
	job, err := apiClient.Curation().StartCuration(cmd.Context(), client.StartCurationRequest{
		ResearchJobID:    args[0],
		SelectedVideoIDs: curationVideos,
	})
	if err != nil {
		return fmt.Errorf("start curation: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Started curation %s from research %s\n",
		models.JobLabel(job.ID), models.JobLabel(job.ResearchJobID))
	if !curationWatch {
		return nil
	}
	return watchJob(cmd, models.JobLabel(job.ID), query.CurationJob(apiClient, job.ID, intervals()), curationState)
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64) + "s"
}
