package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cbodonnell/simon/pkg/config"
	"github.com/cbodonnell/simon/pkg/repositories"
	"github.com/cbodonnell/simon/pkg/repositories/models"
	"github.com/spf13/cobra"
)

var scoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores [player]",
	Short: "List the highscores, or the best scores of one player",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := setupLogger(cfg, os.Stderr); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		repository, err := repositories.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open repository: %v", err)
		}
		defer repository.Close(ctx)

		var scores []*models.Score
		if len(args) == 1 {
			scores, err = repository.PlayerScores(ctx, args[0], scoresLimit)
			if repositories.IsNotFound(err) {
				return fmt.Errorf("player %q has no scores", args[0])
			}
		} else {
			scores, err = repository.TopScores(ctx, scoresLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to list scores: %v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tNAME\tSCORE\tDIFFICULTY\tACHIEVED")
		for i, s := range scores {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", i+1, s.Name, s.Score, s.Difficulty, s.AchievedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	},
}

func init() {
	scoresCmd.Flags().IntVarP(&scoresLimit, "limit", "n", repositories.DefaultLimit, "Number of scores to list")
	rootCmd.AddCommand(scoresCmd)
}
