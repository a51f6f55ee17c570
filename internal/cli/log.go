package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/domain"
)

func init() {
	logCmd.Flags().StringVar(&logStream, "stream", "global", "Activity stream (global, coding, task)")
	logCmd.Flags().Int64Var(&logXP, "xp", 0, "XP to award for this activity")
	logCmd.Flags().IntVar(&logMinutes, "minutes", 0, "Active minutes to record")
	rootCmd.AddCommand(logCmd)
}

var (
	logStream  string
	logXP      int64
	logMinutes int
)

var logCmd = &cobra.Command{
	Use:   "log <kind>",
	Short: "Log activity (problem_solved, task_completed, focus_minutes)",
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

// Default XP awards per activity kind when --xp is not given.
var defaultXP = map[domain.ActivityKind]int64{
	domain.ActivityProblemSolved: 100,
	domain.ActivityTaskCompleted: 80,
	domain.ActivityFocusMinutes:  2, // per minute
}

func runLog(cmd *cobra.Command, args []string) error {
	kind := domain.ActivityKind(args[0])
	base, ok := defaultXP[kind]
	if !ok {
		return fmt.Errorf("unknown activity kind %q", args[0])
	}

	xp := logXP
	if xp == 0 {
		xp = base
		if kind == domain.ActivityFocusMinutes {
			xp = base * int64(logMinutes)
		}
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Store.Dispatch(progression.RecordActivity{
		Stream:  domain.Stream(logStream),
		Kind:    kind,
		XP:      xp,
		Minutes: logMinutes,
	}, time.Now())
	if err != nil {
		return err
	}
	if !res.Applied {
		return fmt.Errorf("not recorded: %s", res.Reason)
	}

	s := res.State
	fmt.Printf("Logged %s", kind)
	for _, e := range res.Entries {
		fmt.Printf("  +%d XP", e.Amount)
	}
	fmt.Printf("  (streak %dd, level %d)\n",
		s.Streaks[domain.Stream(logStream)].CurrentStreak, s.Ledger.CurrentLevel)

	for _, ev := range res.Events {
		fmt.Printf("  ★ %s — %s\n", ev.Title, ev.Body)
	}
	return nil
}
