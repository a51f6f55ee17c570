package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, XP, streaks, and energy",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now()
	if _, err := d.Store.Dispatch(progression.Tick{}, now); err != nil {
		return err
	}
	s := d.Store.Snapshot()

	fmt.Printf("Level %d  —  %d XP", s.Ledger.CurrentLevel, s.Ledger.CurrentXP)
	if s.Ledger.XPMultiplier > 1 {
		fmt.Printf("  (%.1fx boost until %s)",
			s.Ledger.XPMultiplier, s.Ledger.BonusExpiry.Local().Format("15:04"))
	}
	fmt.Println()
	fmt.Printf("  %s  %d XP to level %d\n",
		progressBar(progression.XPIntoLevel(s.Ledger.CurrentXP), progression.XPRequiredForLevel(s.Ledger.CurrentLevel)),
		s.Ledger.XPToNextLevel, s.Ledger.CurrentLevel+1)

	fmt.Printf("\nEnergy: %d/%d (%s)\n", s.Energy.Current, s.Energy.Max, s.Energy.Mood())
	fmt.Printf("Next reset in %s\n", (time.Duration(progression.SecondsUntilReset(s, now)) * time.Second).Round(time.Second))

	fmt.Println("\nStreaks:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  STREAM\tCURRENT\tLONGEST\tLAST ACTIVITY")
	for _, stream := range domain.Streams() {
		st := s.Streaks[stream]
		last := st.LastActivityDate
		if last == "" {
			last = "never"
		}
		fmt.Fprintf(w, "  %s\t%dd\t%dd\t%s\n", stream, st.CurrentStreak, st.LongestStreak, last)
	}
	return w.Flush()
}

// progressBar renders done/total as a 20-cell bar.
func progressBar(done, total int64) string {
	const width = 20
	if total <= 0 {
		total = 1
	}
	filled := int(done * width / total)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
