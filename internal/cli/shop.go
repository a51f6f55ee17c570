package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gritforge/grit/internal/app/progression"
)

func init() {
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(useCmd)
}

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "List power-ups for sale",
	RunE:  runShop,
}

var buyCmd = &cobra.Command{
	Use:   "buy <power-up>",
	Short: "Spend XP on a power-up",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuy,
}

var useCmd = &cobra.Command{
	Use:   "use <power-up>",
	Short: "Activate an owned power-up",
	Args:  cobra.ExactArgs(1),
	RunE:  runUse,
}

func runShop(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	s := d.Store.Snapshot()
	defs := d.Store.Engine().Catalog.Defs()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Cost < defs[j].Cost })

	fmt.Printf("Balance: %d XP\n\n", s.Ledger.CurrentXP)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEFFECT\tCOST\tOWNED")
	for _, def := range defs {
		effect := "—"
		switch {
		case def.Multiplicative():
			effect = fmt.Sprintf("%.1fx XP for %dm", def.Multiplier, def.Duration)
		case def.RewardXP > 0:
			effect = fmt.Sprintf("+%d XP instantly", def.RewardXP)
		case def.Duration > 0:
			effect = fmt.Sprintf("%dm", def.Duration)
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%d\t%d\n",
			def.ID, def.Icon, def.Name, effect, def.Cost, s.Owned[def.ID])
	}
	return w.Flush()
}

func runBuy(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Store.Dispatch(progression.BuyPowerUp{ID: args[0]}, time.Now())
	if err != nil {
		return err
	}
	if !res.Applied {
		return fmt.Errorf("not purchased: %s", res.Reason)
	}
	fmt.Printf("Purchased %s. Balance: %d XP\n", args[0], res.State.Ledger.CurrentXP)
	return nil
}

func runUse(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Store.Dispatch(progression.ActivatePowerUp{ID: args[0]}, time.Now())
	if err != nil {
		return err
	}
	if !res.Applied {
		return fmt.Errorf("not activated: %s", res.Reason)
	}

	for _, ev := range res.Events {
		fmt.Printf("★ %s — %s\n", ev.Title, ev.Body)
	}
	if res.State.Ledger.BonusActive {
		fmt.Printf("XP multiplier now %.1fx until %s\n",
			res.State.Ledger.XPMultiplier, res.State.Ledger.BonusExpiry.Local().Format("15:04"))
	}
	return nil
}
