// Command deckctl draws and simulates scratch-card decks from a prize file.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/google/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Ashenafi-pixel/guaguale/deck"
	"github.com/Ashenafi-pixel/guaguale/prizepool"
	"github.com/Ashenafi-pixel/guaguale/rng"
)

func main() {
	_ = godotenv.Load(".env")
	defer logger.Init("deckctl", false, false, io.Discard).Close()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deckctl",
		Short:         "Draw and simulate scratch-card decks",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	var prizesFile string
	var seed uint64
	root.PersistentFlags().StringVarP(&prizesFile, "prizes", "p", os.Getenv("GUAGUALE_PRIZES_FILE"), "YAML prize file")
	root.PersistentFlags().Uint64Var(&seed, "seed", 0, "seed for a reproducible run (0 uses crypto/rand)")

	load := func() (prizepool.Pool, error) {
		if prizesFile == "" {
			return prizepool.Pool{}, fmt.Errorf("--prizes is required")
		}
		list, err := prizepool.LoadYAML(prizesFile)
		if err != nil {
			return prizepool.Pool{}, err
		}
		return prizepool.Validate(list)
	}
	source := func() rng.Source {
		if seed == 0 {
			return rng.Crypto{}
		}
		return rng.NewSeeded(seed)
	}

	root.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check a prize file and print the aggregated pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := load()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range pool.Aggregate() {
				fmt.Fprintf(w, "%s\t%d\n", p.Name, p.Count)
			}
			fmt.Fprintf(w, "total\t%d\n", pool.Total)
			return w.Flush()
		},
	})

	var asJSON bool
	drawCmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw one deck and print it in display order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := load()
			if err != nil {
				return err
			}
			d := deck.Draw(pool, source())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for pos, c := range d {
				fmt.Fprintf(w, "%d\t#%d\t%s\n", pos+1, c.ID, c.PrizeName)
			}
			return w.Flush()
		},
	}
	drawCmd.Flags().BoolVar(&asJSON, "json", false, "print the deck as JSON")
	root.AddCommand(drawCmd)

	var rounds int
	var method string
	simCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Draw many decks and compare first-card frequencies with the configured odds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := load()
			if err != nil {
				return err
			}
			rows, err := simulate(pool, source(), method, rounds)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "prize\texpected\tobserved")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", r.Name, r.Expected, r.Observed)
			}
			return w.Flush()
		},
	}
	simCmd.Flags().IntVarP(&rounds, "rounds", "n", 10000, "number of decks to draw")
	simCmd.Flags().StringVar(&method, "method", "canonical", "draw method: canonical (shuffle) or legacy (weighted index)")
	root.AddCommand(simCmd)
	return root
}

type frequency struct {
	Name     string
	Expected float64
	Observed float64
}

// simulate draws rounds decks and tallies which prize lands first.
func simulate(pool prizepool.Pool, src rng.Source, method string, rounds int) ([]frequency, error) {
	if rounds < 1 {
		return nil, fmt.Errorf("rounds must be >= 1")
	}
	var first func() string
	switch method {
	case "canonical":
		first = func() string { return deck.Draw(pool, src)[0].PrizeName }
	case "legacy":
		first = func() string { return pool.PickSequence(src)[0] }
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
	hits := make(map[string]int)
	for i := 0; i < rounds; i++ {
		hits[first()]++
	}
	out := make([]frequency, 0, len(pool.Prizes))
	for _, p := range pool.Aggregate() {
		out = append(out, frequency{
			Name:     p.Name,
			Expected: float64(p.Count) / float64(pool.Total),
			Observed: float64(hits[p.Name]) / float64(rounds),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Expected > out[j].Expected })
	logger.Infof("simulated %d %s draws over %d prizes", rounds, method, pool.Total)
	return out, nil
}
