// Package bench provides benchmarking primitives for the subtok bench command.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/go-subtok/internal/tokenizer"
)

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing and throughput metadata for a single encode run.
type RunResult struct {
	Index       int
	Cold        bool // true for the first run (cold-start)
	Duration    time.Duration
	Words       int
	Tokens      int
	WordsPerSec float64
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// An empty slice yields the zero Stats.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Run encodes every segment with tok, repeated runs times, and records one
// RunResult per iteration. The first iteration is flagged as cold.
func Run(tok tokenizer.Tokenizer, segments []string, runs int) []RunResult {
	if runs < 1 {
		runs = 1
	}

	words := 0
	for _, s := range segments {
		words += len(strings.Fields(s))
	}

	results := make([]RunResult, 0, runs)
	for i := 0; i < runs; i++ {
		start := time.Now()
		tokens := 0
		for _, s := range segments {
			tokens += len(tok.Encode(s))
		}
		elapsed := time.Since(start)

		wps := 0.0
		if elapsed > 0 {
			wps = float64(words) / elapsed.Seconds()
		}

		results = append(results, RunResult{
			Index:       i,
			Cold:        i == 0,
			Duration:    elapsed,
			Words:       words,
			Tokens:      tokens,
			WordsPerSec: wps,
		})
	}
	return results
}

// Durations extracts the per-run durations for ComputeStats.
func Durations(runs []RunResult) []time.Duration {
	ds := make([]time.Duration, len(runs))
	for i, r := range runs {
		ds[i] = r.Duration
	}
	return ds
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %8s  %8s  %12s\n", "Run", "Cold", "MS", "Words", "Tokens", "Words/s")
	fmt.Fprintln(sb, strings.Repeat("-", 58))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10.1f  %8d  %8d  %12.0f\n",
			r.Index+1,
			cold,
			float64(r.Duration.Microseconds())/1000.0,
			r.Words,
			r.Tokens,
			r.WordsPerSec,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 58))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  (min)\n", "", "", float64(stats.Min.Microseconds())/1000.0)
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  (mean)\n", "", "", float64(stats.Mean.Microseconds())/1000.0)
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  (max)\n", "", "", float64(stats.Max.Microseconds())/1000.0)

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index       int     `json:"index"`
	Cold        bool    `json:"cold"`
	DurationMS  float64 `json:"duration_ms"`
	Words       int     `json:"words"`
	Tokens      int     `json:"tokens"`
	WordsPerSec float64 `json:"words_per_sec"`
}

type jsonStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:  float64(stats.Min.Microseconds()) / 1000.0,
			MeanMS: float64(stats.Mean.Microseconds()) / 1000.0,
			MaxMS:  float64(stats.Max.Microseconds()) / 1000.0,
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:       r.Index,
			Cold:        r.Cold,
			DurationMS:  float64(r.Duration.Microseconds()) / 1000.0,
			Words:       r.Words,
			Tokens:      r.Tokens,
			WordsPerSec: r.WordsPerSec,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
