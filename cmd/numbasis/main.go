package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"numbasis/internal/basis"
	"numbasis/internal/catalog"
	"numbasis/internal/check"
	"numbasis/internal/config"
	"numbasis/internal/expr"
	"numbasis/internal/logger"
	"numbasis/internal/numeric"
	"numbasis/internal/storage"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "numbasis",
		Short: "Unit decomposition and randomized dimensional checks",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = loadConfig()
			logger.Init(cfg.Log.Level, cfg.Log.JSON)
		},
	}
	cfgPath string
	dbPath  string
	seed    uint64
	trials  int
	limit   int

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the check history database (SQLite)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Fixed seed for the numeric basis (0 picks a random one)")

	checkCmd.Flags().IntVarP(&trials, "trials", "n", 0, "Number of random bases per formula")
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of runs to list")

	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
}

func loadConfig() *config.Config {
	c, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		c.Storage.Path = dbPath
	}
	if seed != 0 {
		s := seed
		c.Basis.Seed = &s
	}
	return c
}

// initCatalog builds the SI catalog plus any configured unit definitions.
func initCatalog() *catalog.Catalog {
	if cfg.System != "SI" {
		log.Fatalf("Unsupported unit system %q", cfg.System)
	}
	cat, err := catalog.NewSI()
	if err != nil {
		log.Fatalf("Failed to build unit catalog: %v", err)
	}
	if cfg.Units.File != "" {
		added, err := cat.ApplyPath(cfg.Units.File)
		if err != nil {
			log.Fatalf("Failed to apply unit definitions: %v", err)
		}
		fmt.Printf("📐 Loaded %d extra units from %s\n", len(added), cfg.Units.File)
	}
	return cat
}

func initMapper() *numeric.QuantityMapper {
	switch {
	case cfg.Basis.Unitary:
		return numeric.Unitary()
	case cfg.Basis.Seed != nil:
		return numeric.NewMapper(*cfg.Basis.Seed)
	}
	return numeric.Random()
}

func lookup(cat *catalog.Catalog, name string) expr.Expr {
	q, ok := cat.Lookup(name)
	if !ok {
		log.Fatalf("Unknown unit %q", name)
	}
	return q
}

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List known units and their base-unit decomposition",
	Run: func(cmd *cobra.Command, args []string) {
		cat := initCatalog()
		for _, q := range cat.Registry.Quantities() {
			decomposed, err := basis.ToBasis(cat.System, q)
			if err != nil {
				log.Fatalf("Failed to decompose %s: %v", q.Name(), err)
			}
			fmt.Printf("%-26s %-8s = %s\n", q.Name(), q.Abbrev(), decomposed)
		}
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Show the numeric value assigned to each base unit",
	Run: func(cmd *cobra.Command, args []string) {
		cat := initCatalog()
		m := initMapper()
		b := numeric.NewBasis(cat.System, m)

		if s, ok := m.Seed(); ok {
			fmt.Printf("🎲 Seed: %d\n", s)
		} else {
			fmt.Println("🎲 Unitary basis")
		}
		values, err := b.NumericMap()
		if err != nil {
			log.Fatalf("Failed to map base units: %v", err)
		}
		for _, q := range cat.System.BaseUnits() {
			fmt.Printf("  %-10s %g\n", q.Name(), values[q.Name()])
		}
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <value> <from-unit> <to-unit>",
	Short: "Convert a value between units through the base units",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		value, err := cast.ToFloat64E(args[0])
		if err != nil {
			log.Fatalf("Invalid value %q: %v", args[0], err)
		}
		cat := initCatalog()
		from, to := lookup(cat, args[1]), lookup(cat, args[2])
		quantity := expr.NewMul(expr.Float(value), from)

		converted, err := basis.SafeConvert(cat.System, quantity, to)
		if err != nil {
			log.Fatalf("Conversion failed: %v", err)
		}
		decomposed, err := basis.ToBasis(cat.System, quantity)
		if err != nil {
			log.Fatalf("Conversion failed: %v", err)
		}
		factor, _ := basis.SplitUnit(converted, true)
		approx, err := numeric.FloatOrComplex(factor)
		if err != nil {
			log.Fatalf("Conversion failed: %v", err)
		}

		fmt.Printf("%s = %s\n", quantity, basis.SplitUnitForm(converted, true))
		fmt.Printf("  ≈ %s %s\n", approx, args[2])
		fmt.Printf("  base units: %s\n", decomposed)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the sample formulas under random numeric bases",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cat := initCatalog()

		n := cfg.Check.Trials
		if trials > 0 {
			n = trials
		}
		opts := []check.Option{check.WithTrials(n), check.WithTolerance(cfg.Check.Tolerance)}
		if cfg.Basis.Seed != nil {
			seeds := make([]uint64, n)
			for i := range seeds {
				seeds[i] = *cfg.Basis.Seed + uint64(i)
			}
			opts = append(opts, check.WithMapperSource(check.Seeds(seeds...)))
		}
		checker := check.NewChecker(cat.System, opts...)

		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		fmt.Printf("🔬 Checking formulas with %d random bases...\n", n)
		reports, err := checker.CheckAll(ctx, check.Samples(cat))
		if err != nil {
			log.Fatalf("Check failed: %v", err)
		}

		failed := 0
		for _, r := range reports {
			if err := store.SaveReport(ctx, r); err != nil {
				log.Fatalf("Failed to save report: %v", err)
			}
			mark := "✅"
			if !r.Consistent {
				mark = "❌"
				failed++
			}
			fmt.Printf("%s %-26s %s %s (spread %.3g)\n", mark, r.Formula, r.Nominal, r.Target, r.Spread)
		}
		fmt.Printf("💾 %d runs saved to %s\n", len(reports), cfg.Storage.Path)
		if failed > 0 {
			fmt.Printf("⚠️  %d formula(s) are dimensionally inconsistent\n", failed)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List past check runs, or show one run with its trials",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		store, err := storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		if len(args) == 1 {
			r, err := store.GetReport(ctx, args[0])
			if err != nil {
				log.Fatalf("Failed to load run: %v", err)
			}
			fmt.Printf("%s  %s  %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Formula)
			fmt.Printf("  %s -> %s = %s (consistent: %t)\n", r.Expr, r.Target, r.Nominal, r.Consistent)
			for _, t := range r.Trials {
				fmt.Printf("  seed %-20d numeric %-24s scalar %s\n", t.Seed, t.Numeric, t.Scalar)
			}
			return
		}

		reports, err := store.ListReports(ctx, limit)
		if err != nil {
			log.Fatalf("Failed to list runs: %v", err)
		}
		for _, r := range reports {
			fmt.Printf("%s  %s  %-26s consistent=%t\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Formula, r.Consistent)
		}
	},
}
