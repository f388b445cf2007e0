package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

var productionWatch bool

var productionCmd = &cobra.Command{
	Use:   "production",
	Short: "Generate scene images and soundtrack songs",
	Long: `Production jobs generate one image per storyboard scene and the
soundtrack songs of a completed curation job.

Examples:
  ymf production list
  ymf production start 5e6f7a8b --watch
  ymf production for-curation 5e6f7a8b
  ymf production show 9c0d1e2f`,
}

var productionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List production jobs",
	Args:  cobra.NoArgs,
	RunE:  runProductionList,
}

var productionShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a production job with its scenes and tracks",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductionShow,
}

var productionStartCmd = &cobra.Command{
	Use:   "start <curation-job-id>",
	Short: "Start production from a curation job",
	Long: `Start production from a curation job. The backend returns the
existing job if one was already started for that curation job.`,
	Args: cobra.ExactArgs(1),
	RunE: runProductionStart,
}

var productionForCurationCmd = &cobra.Command{
	Use:   "for-curation <curation-job-id>",
	Short: "Show the production job started from a curation job",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductionForCuration,
}

func init() {
	productionStartCmd.Flags().BoolVarP(&productionWatch, "watch", "w", false, "follow the job until it finishes")

	productionCmd.AddCommand(productionListCmd)
	productionCmd.AddCommand(productionShowCmd)
	productionCmd.AddCommand(productionStartCmd)
	productionCmd.AddCommand(productionForCurationCmd)
}

func runProductionList(cmd *cobra.Command, args []string) error {
	jobs, err := apiClient.Production().ListJobs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list production jobs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No production jobs found")
		return nil
	}

	fmt.Fprintf(out, "%-12s %-12s %-12s %-7s %-7s %s\n", "ID", "STATUS", "CURATION", "SCENES", "TRACKS", "CREATED")
	fmt.Fprintln(out, "------------------------------------------------------------------------")
	for _, j := range jobs {
		fmt.Fprintf(out, "%-12s %-12s %-12s %-7d %-7d %s\n",
			models.JobLabel(j.ID), models.StatusLabel(string(j.Status)), models.JobLabel(j.CurationJobID),
			j.NumScenes, j.NumTracks, formatTime(j.CreatedAt))
	}
	return nil
}

func runProductionShow(cmd *cobra.Command, args []string) error {
	d, err := apiClient.Production().GetJob(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get production job: %w", err)
	}

	out := cmd.OutOrStdout()
	printProductionJob(out, d.Job)
	fmt.Fprintf(out, "  Progress: %d/%d scenes\n", d.CompletedScenes(), d.Job.NumScenes)

	if len(d.Tracks) > 0 {
		fmt.Fprintf(out, "\nTracks (%d):\n", len(d.Tracks))
		for _, tr := range d.Tracks {
			fmt.Fprintf(out, "  Track %d [%s] %s\n", tr.TrackNumber, models.StatusLabel(string(tr.SunoStatus)), tr.SongPrompt)
			printAsset(out, tr.AudioURL, tr.SunoStatus, tr.ErrorMessage)
		}
	}

	if len(d.Scenes) > 0 {
		fmt.Fprintf(out, "\nScenes (%d):\n", len(d.Scenes))
		for _, s := range d.Scenes {
			fmt.Fprintf(out, "  Scene %d [%s] %s\n", s.SceneNumber, models.StatusLabel(string(s.Status)), s.Description)
			printAsset(out, s.ImageURL, s.Status, s.ErrorMessage)
		}
	}
	return nil
}

func printProductionJob(out io.Writer, j models.ProductionJob) {
	fmt.Fprintf(out, "Production: %s\n", j.ID)
	fmt.Fprintf(out, "  Curation: %s\n", j.CurationJobID)
	fmt.Fprintf(out, "  Status: %s\n", models.StatusLabel(string(j.Status)))
	fmt.Fprintf(out, "  Scenes: %d  Tracks: %d\n", j.NumScenes, j.NumTracks)
	if j.ErrorMessage != nil && *j.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error: %s\n", *j.ErrorMessage)
	}
}

func printAsset(out io.Writer, url *string, status models.AssetStatus, errMsg *string) {
	switch {
	case url != nil && *url != "":
		fmt.Fprintf(out, "    %s\n", *url)
	case status == models.AssetFailed:
		reason := "Generation Failed"
		if errMsg != nil && *errMsg != "" {
			reason = *errMsg
		}
		fmt.Fprintf(out, "    Error: %s\n", reason)
	}
}

func runProductionStart(cmd *cobra.Command, args []string) error {
	job, err := apiClient.Production().StartProduction(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("start production: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Started production %s from curation %s (%d scenes, %d tracks)\n",
		models.JobLabel(job.ID), models.JobLabel(job.CurationJobID), job.NumScenes, job.NumTracks)
	if !productionWatch {
		return nil
	}
	return watchJob(cmd, models.JobLabel(job.ID), query.ProductionJob(apiClient, job.ID, intervals()), productionState)
}

func runProductionForCuration(cmd *cobra.Command, args []string) error {
	job, err := apiClient.Production().GetJobByCuration(cmd.Context(), args[0])
	if errors.Is(err, client.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No production job for curation %s\n", models.JobLabel(args[0]))
		return nil
	}
	if err != nil {
		return fmt.Errorf("get production for curation: %w", err)
	}
	printProductionJob(cmd.OutOrStdout(), *job)
	return nil
}
