// Command goguard-perfcheck compares two `go test -bench` outputs for the
// Guard hot paths and exits non-zero when a tracked metric regresses past
// the threshold.
//
//	go test -run '^$' -bench . -benchmem -count 6 . > new.txt
//	goguard-perfcheck -baseline old.txt -candidate new.txt
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

const defaultThreshold = 0.30

// trackedMetrics lists the benchmarks that gate a change. Allow and
// IsRevoked run on every request; the others run on every login or 2FA step.
var trackedMetrics = map[string][]string{
	"BenchmarkAllow":             {"ns/op", "allocs/op"},
	"BenchmarkAllowParallel":     {"ns/op"},
	"BenchmarkIsRevoked":         {"ns/op", "allocs/op"},
	"BenchmarkRecordFailedLogin": {"ns/op"},
	"BenchmarkVerifyCode":        {"ns/op"},
}

var errRegressed = errors.New("performance regression threshold exceeded")

// samples maps benchmark name to unit to observed values.
type samples map[string]map[string][]float64

type comparison struct {
	Benchmark string
	Metric    string
	Baseline  float64
	Candidate float64
	Delta     float64
}

func main() {
	var (
		baselinePath  string
		candidatePath string
		threshold     float64
	)

	flag.StringVar(&baselinePath, "baseline", "", "path to baseline benchmark output")
	flag.StringVar(&candidatePath, "candidate", "", "path to candidate benchmark output")
	flag.Float64Var(&threshold, "threshold", defaultThreshold, "maximum allowed regression ratio (0.30 = +30%)")
	flag.Parse()

	if baselinePath == "" || candidatePath == "" {
		fmt.Fprintln(os.Stderr, "-baseline and -candidate are required")
		os.Exit(2)
	}
	if threshold < 0 {
		fmt.Fprintln(os.Stderr, "-threshold must be >= 0")
		os.Exit(2)
	}

	if err := run(baselinePath, candidatePath, threshold, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errRegressed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(baselinePath, candidatePath string, threshold float64, stdout, stderr io.Writer) error {
	baseline, err := parseFile(baselinePath)
	if err != nil {
		return fmt.Errorf("parse baseline: %w", err)
	}
	candidate, err := parseFile(candidatePath)
	if err != nil {
		return fmt.Errorf("parse candidate: %w", err)
	}

	rows, failures := compare(baseline, candidate, threshold)

	fmt.Fprintln(stdout, "goguard perf check:")
	fmt.Fprintln(stdout, "benchmark metric baseline candidate delta")
	for _, r := range rows {
		fmt.Fprintf(stdout, "%s %s %.3f %.3f %+0.2f%%\n", r.Benchmark, r.Metric, r.Baseline, r.Candidate, r.Delta*100)
	}

	if len(failures) == 0 {
		return nil
	}
	fmt.Fprintln(stderr, errRegressed.Error()+":")
	for _, f := range failures {
		fmt.Fprintf(stderr, "  - %s\n", f)
	}
	return errRegressed
}

// compare returns one row per tracked metric present in both sets, in a
// stable order, plus a description of every failure.
func compare(baseline, candidate samples, threshold float64) ([]comparison, []string) {
	names := make([]string, 0, len(trackedMetrics))
	for name := range trackedMetrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		rows     []comparison
		failures []string
	)
	for _, name := range names {
		for _, metric := range trackedMetrics[name] {
			base := baseline[name][metric]
			cand := candidate[name][metric]
			if len(base) == 0 || len(cand) == 0 {
				failures = append(failures, fmt.Sprintf("missing samples for %s %s", name, metric))
				continue
			}

			b, c := median(base), median(cand)
			if b <= 0 {
				// 0 allocs/op is a legitimate baseline; any allocation is then a regression.
				if metric == "allocs/op" && b == 0 {
					rows = append(rows, comparison{name, metric, b, c, c})
					if c > 0 {
						failures = append(failures, fmt.Sprintf("%s started allocating (%.0f allocs/op)", name, c))
					}
					continue
				}
				failures = append(failures, fmt.Sprintf("invalid baseline median for %s %s", name, metric))
				continue
			}

			delta := (c - b) / b
			rows = append(rows, comparison{name, metric, b, c, delta})
			if delta > threshold {
				failures = append(failures, fmt.Sprintf("%s %s regressed by %+0.2f%% (limit %+0.2f%%)", name, metric, delta*100, threshold*100))
			}
		}
	}
	return rows, failures
}

func parseFile(path string) (samples, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

// parse reads benchmark lines of the form
//
//	BenchmarkAllow-8   1000000   123.4 ns/op   0 B/op   0 allocs/op
func parse(r io.Reader) (samples, error) {
	out := samples{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Benchmark") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		name := normalizeName(fields[0])
		if _, ok := trackedMetrics[name]; !ok {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = map[string][]float64{}
		}

		for i := 2; i+1 < len(fields); i += 2 {
			value, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				continue
			}
			out[name][fields[i+1]] = append(out[name][fields[i+1]], value)
		}
	}
	return out, scanner.Err()
}

// normalizeName strips the -GOMAXPROCS suffix.
func normalizeName(raw string) string {
	if idx := strings.LastIndexByte(raw, '-'); idx > 0 {
		if _, err := strconv.Atoi(raw[idx+1:]); err == nil {
			return raw[:idx]
		}
	}
	return raw
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
