package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gritforge/grit/internal/app/progression"
)

func init() {
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Run the daily reset now if it is due",
	Long: `Run the day-boundary transition: judge streak continuity and overdue
tasks, apply penalties (unless shielded), and roll weekly counters. At most
one reset applies per calendar date.`,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now()
	tasks, err := d.DB.DueTasks(now)
	if err != nil {
		return err
	}

	res, err := d.Store.Dispatch(progression.PerformDailyReset{Tasks: tasks}, now)
	if err != nil {
		return err
	}
	if !res.Applied {
		fmt.Printf("Nothing to do: %s\n", res.Reason)
		return nil
	}

	for _, ev := range res.Events {
		fmt.Printf("%s — %s\n", ev.Title, ev.Body)
	}
	return nil
}
