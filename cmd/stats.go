// Package cmd implements the command-line interface for tokgrab.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/tokgrab-cli/tokgrab/color"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/icon"
	"github.com/tokgrab-cli/tokgrab/metrics"
	"github.com/tokgrab-cli/tokgrab/style"
	"github.com/tokgrab-cli/tokgrab/where"
)

// statsCacher persists resolution statistics accumulated across runs.
var statsCacher = gache.New[*metrics.Snapshot](&gache.Options{
	Path:       where.Stats(),
	FileSystem: &filesystem.GacheFs{},
})

// saveStats merges one run's accounting into the persistent statistics.
func saveStats(run metrics.Snapshot) {
	stored, expired, err := statsCacher.Get()
	if err != nil || expired || stored == nil {
		stored = &metrics.Snapshot{Providers: make(map[string]metrics.ProviderStats)}
	}

	merged := mergeSnapshots(*stored, run)
	_ = statsCacher.Set(&merged)
}

// mergeSnapshots folds counters of b into a. Provider response time means
// combine weighted by success counts; ratios are recomputed from the merged
// totals.
func mergeSnapshots(a, b metrics.Snapshot) metrics.Snapshot {
	merged := metrics.Snapshot{
		Providers:     make(map[string]metrics.ProviderStats, len(a.Providers)+len(b.Providers)),
		Resolutions:   a.Resolutions + b.Resolutions,
		Successes:     a.Successes + b.Successes,
		CacheHits:     a.CacheHits + b.CacheHits,
		SuccessRate:   mo.None[float64](),
		CacheHitRatio: mo.None[float64](),
	}

	for name, stats := range a.Providers {
		merged.Providers[name] = stats
	}
	for name, stats := range b.Providers {
		prev := merged.Providers[name]
		next := metrics.ProviderStats{
			Calls:     prev.Calls + stats.Calls,
			Successes: prev.Successes + stats.Successes,
			Failures:  prev.Failures + stats.Failures,
		}
		if next.Successes > 0 {
			next.AverageResponseTimeMs = (prev.AverageResponseTimeMs*float64(prev.Successes) +
				stats.AverageResponseTimeMs*float64(stats.Successes)) / float64(next.Successes)
		}
		merged.Providers[name] = next
	}

	if merged.Resolutions > 0 {
		merged.SuccessRate = mo.Some(float64(merged.Successes) / float64(merged.Resolutions))
		merged.CacheHitRatio = mo.Some(float64(merged.CacheHits) / float64(merged.Resolutions))
	}

	merged.RecentErrors = append(a.RecentErrors, b.RecentErrors...)
	if len(merged.RecentErrors) > 5 {
		merged.RecentErrors = merged.RecentErrors[len(merged.RecentErrors)-5:]
	}

	return merged
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	statsCmd.Flags().Bool("schema", false, "Print the JSON schema of the statistics output")
	statsCmd.Flags().Bool("reset", false, "Clear the accumulated statistics")
	statsCmd.MarkFlagsMutuallyExclusive("json", "schema", "reset")

	statsCmd.SetOut(os.Stdout)
}

// statsCmd displays the resolution statistics accumulated across runs.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display per-provider resolution statistics accumulated across runs",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			reflector := new(jsonschema.Reflector)
			reflector.Anonymous = true
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect(&metrics.Snapshot{})))
			return
		}

		if lo.Must(cmd.Flags().GetBool("reset")) {
			handleErr(statsCacher.Set(nil))
			fmt.Printf("%s statistics cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		stored, _, err := statsCacher.Get()
		handleErr(err)
		if stored == nil {
			stored = &metrics.Snapshot{Providers: make(map[string]metrics.ProviderStats)}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(stored))
			return
		}

		printStats(cmd, stored)
	},
}

func printStats(cmd *cobra.Command, snap *metrics.Snapshot) {
	header := style.New().Bold(true).Foreground(color.HiPurple).Render

	cmd.Println(header("Resolutions"))
	cmd.Printf("  %s %d\n", style.Faint("Total"), snap.Resolutions)
	cmd.Printf("  %s %d\n", style.Faint("Succeeded"), snap.Successes)
	cmd.Printf("  %s %d\n", style.Faint("Cache hits"), snap.CacheHits)
	cmd.Printf("  %s %s\n", style.Faint("Success rate"), ratio(snap.SuccessRate))
	cmd.Printf("  %s %s\n", style.Faint("Cache hit ratio"), ratio(snap.CacheHitRatio))

	names := lo.Keys(snap.Providers)
	sort.Strings(names)

	if len(names) > 0 {
		cmd.Println()
		cmd.Println(header("Providers"))
	}
	for _, name := range names {
		stats := snap.Providers[name]
		cmd.Printf(
			"  %s %d calls, %d ok, %d failed, %s avg\n",
			style.Fg(color.Purple)(name),
			stats.Calls,
			stats.Successes,
			stats.Failures,
			fmt.Sprintf("%.0fms", stats.AverageResponseTimeMs),
		)
	}

	if len(snap.RecentErrors) > 0 {
		cmd.Println()
		cmd.Println(header("Recent errors"))
		for _, event := range snap.RecentErrors {
			cmd.Printf(
				"  %s %s %s\n",
				style.Faint(event.At.Format("2006-01-02 15:04:05")),
				style.Fg(color.Red)(event.Provider),
				event.Reason,
			)
		}
	}
}

func ratio(value mo.Option[float64]) string {
	if value.IsAbsent() {
		return style.Faint("n/a")
	}
	return fmt.Sprintf("%.0f%%", value.MustGet()*100)
}
