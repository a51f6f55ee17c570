package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gritforge/grit/internal/domain"
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries to show")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(eventsCmd)
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent XP transactions",
	RunE:  runHistory,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent progression events",
	RunE:  runEvents,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	entries, err := d.DB.ListXPEntries(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No XP transactions yet. Run 'grit log' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tAMOUNT\tREASON\tBALANCE")
	for _, e := range entries {
		sign := "+"
		if e.Kind != domain.XPCredit {
			sign = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s%d\t%s\t%d\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.Kind, sign, e.Amount, e.Reason, e.Balance)
	}
	return w.Flush()
}

func runEvents(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	events, err := d.DB.ListEvents(20)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events yet.")
		return nil
	}
	for _, ev := range events {
		fmt.Printf("%s  %-20s %s — %s\n",
			ev.CreatedAt.Local().Format("2006-01-02 15:04"), ev.Type, ev.Title, ev.Body)
	}
	return nil
}
