package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

var (
	researchDepth string
	researchWatch bool
	researchRank  bool
	researchForce bool
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Start and inspect research jobs",
	Long: `Research jobs search for source videos on a topic, score them and
synthesize a summary.

Examples:
  ymf research list
  ymf research start "Ancient Rome" --watch
  ymf research show 1a2b3c4d --rank
  ymf research delete 1a2b3c4d`,
}

var researchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List research jobs",
	Args:  cobra.NoArgs,
	RunE:  runResearchList,
}

var researchShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a research job with its videos",
	Args:  cobra.ExactArgs(1),
	RunE:  runResearchShow,
}

var researchStartCmd = &cobra.Command{
	Use:   "start <topic>",
	Short: "Start a research job",
	Long: `Start a research job for a topic. Multiple arguments are joined with
spaces. A blank topic is rejected before anything is sent.

Examples:
  ymf research start lofi hip hop
  ymf research start "Ancient Rome" --depth deep --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearchStart,
}

var researchDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a research job",
	Long: `Delete a research job and its discovered videos.
Requires confirmation unless --force is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearchDelete,
}

func init() {
	researchStartCmd.Flags().StringVar(&researchDepth, "depth", client.DefaultResearchDepth, "research depth")
	researchStartCmd.Flags().BoolVarP(&researchWatch, "watch", "w", false, "follow the job until it finishes")
	researchShowCmd.Flags().BoolVar(&researchRank, "rank", false, "order videos by relevance score")
	researchDeleteCmd.Flags().BoolVarP(&researchForce, "force", "f", false, "skip confirmation")

	researchCmd.AddCommand(researchListCmd)
	researchCmd.AddCommand(researchShowCmd)
	researchCmd.AddCommand(researchStartCmd)
	researchCmd.AddCommand(researchDeleteCmd)
}

func runResearchList(cmd *cobra.Command, args []string) error {
	jobs, err := apiClient.Research().ListJobs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list research jobs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No research jobs found")
		return nil
	}

	fmt.Fprintf(out, "%-12s %-12s %-17s %s\n", "ID", "STATUS", "CREATED", "TOPIC")
	fmt.Fprintln(out, "------------------------------------------------------------------------")
	for _, j := range jobs {
		fmt.Fprintf(out, "%-12s %-12s %-17s %s\n",
			models.JobLabel(j.ID), models.StatusLabel(string(j.Status)), formatTime(j.CreatedAt), j.Topic())
	}
	return nil
}

func runResearchShow(cmd *cobra.Command, args []string) error {
	job, err := apiClient.Research().GetJob(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get research job: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Research: %s\n", job.ID)
	fmt.Fprintf(out, "  Topic: %s\n", job.Topic())
	fmt.Fprintf(out, "  Status: %s\n", models.StatusLabel(string(job.Status)))
	if job.ResearchDepth != "" {
		fmt.Fprintf(out, "  Depth: %s\n", job.ResearchDepth)
	}
	fmt.Fprintf(out, "  Created: %s\n", job.CreatedAt.Format(time.RFC3339))
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error: %s\n", *job.ErrorMessage)
	}

	if summary := job.Summary(); summary != "" {
		fmt.Fprintf(out, "\nSummary:\n%s\n", summary)
	} else if !job.Status.IsTerminal() {
		fmt.Fprintln(out, "\nSynthesizing research summary...")
	}

	videos := job.Videos
	if researchRank {
		videos = models.RankByRelevance(videos)
	}
	if len(videos) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\nVideos (%d):\n", len(videos))
	for i, v := range videos {
		printVideo(out, i+1, v)
	}
	return nil
}

func printVideo(out io.Writer, n int, v models.ResearchVideo) {
	score := "-"
	if v.RelevanceScore != nil {
		score = fmt.Sprintf("%d/10", *v.RelevanceScore)
	}
	fmt.Fprintf(out, "  #%-3d %-6s %s\n", n, score, v.Title)

	var meta []string
	if v.Channel != nil && *v.Channel != "" {
		meta = append(meta, *v.Channel)
	}
	if v.ViewCount != nil {
		meta = append(meta, fmt.Sprintf("%d views", *v.ViewCount))
	}
	if v.PublishedAt != nil {
		meta = append(meta, v.PublishedAt.Format("2006-01-02"))
	}
	if len(meta) > 0 {
		fmt.Fprintf(out, "        %s\n", strings.Join(meta, " · "))
	}
	fmt.Fprintf(out, "        %s\n", v.WatchURL())
	if researchRank && v.Reasoning != nil && *v.Reasoning != "" {
		fmt.Fprintf(out, "        %s\n", *v.Reasoning)
	}
}

func runResearchStart(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	job, err := apiClient.Research().StartJob(cmd.Context(), client.StartResearchRequest{
		Topic:         topic,
		ResearchDepth: researchDepth,
	})
	if err != nil {
		return fmt.Errorf("start research: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Started research %s for %q (%s)\n",
		models.JobLabel(job.ID), job.Topic(), models.StatusLabel(string(job.Status)))
	if !researchWatch {
		return nil
	}
	return watchJob(cmd, models.JobLabel(job.ID), query.ResearchJob(apiClient, job.ID, intervals()), researchState)
}

func runResearchDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	out := cmd.OutOrStdout()

	if !researchForce {
		job, err := apiClient.Research().GetJob(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get research job: %w", err)
		}
		fmt.Fprintf(out, "About to delete: %s (%s)\n", job.Topic(), models.JobLabel(job.ID))
		ok, err := confirm(cmd)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := apiClient.Research().DeleteJob(cmd.Context(), id); err != nil {
		return fmt.Errorf("delete research job: %w", err)
	}
	fmt.Fprintf(out, "Deleted: %s\n", models.JobLabel(id))
	return nil
}

// confirm asks a [y/N] question on the command's input.
func confirm(cmd *cobra.Command) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), "\nContinue? [y/N]: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
