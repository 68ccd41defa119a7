// Command goguard-loadtest drives a Guard from many goroutines and reports
// per-phase throughput and latency percentiles, followed by the final
// security metrics.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
)

type phase struct {
	name string
	op   func(r *rand.Rand, i int) bool
}

func main() {
	var (
		clients     = flag.Int("clients", 50000, "number of distinct client IPs")
		users       = flag.Int("users", 10000, "number of distinct usernames")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 500000, "operations per phase")
	)
	flag.Parse()

	if *clients <= 0 || *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	guard, err := goGuard.New().WithLatencyHistograms(true).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build guard: %v\n", err)
		os.Exit(1)
	}
	defer guard.Close()

	ip := func(n int) string { return "10." + strconv.Itoa(n>>16&0xff) + "." + strconv.Itoa(n>>8&0xff) + "." + strconv.Itoa(n&0xff) }
	user := func(n int) string { return "user-" + strconv.Itoa(n) }

	tokenIDs := make([]string, 1024)
	for i := range tokenIDs {
		tokenIDs[i] = "jti-" + strconv.Itoa(i)
		guard.Revoke(tokenIDs[i], time.Now().Add(time.Hour))
	}

	phases := []phase{
		{"admit", func(r *rand.Rand, _ int) bool {
			path := "/api/orders"
			if r.Intn(10) == 0 {
				path = "/api/auth/login"
			}
			return guard.Allow(ip(r.Intn(*clients)), path)
		}},
		{"failed-login", func(r *rand.Rand, _ int) bool {
			guard.RecordFailedLogin(ip(r.Intn(*clients)), user(r.Intn(*users)))
			return true
		}},
		{"revocation-check", func(r *rand.Rand, i int) bool {
			if i%2 == 0 {
				return guard.IsRevoked(tokenIDs[r.Intn(len(tokenIDs))])
			}
			return !guard.IsRevoked("live-" + strconv.Itoa(i))
		}},
		{"one-time-code", func(r *rand.Rand, _ int) bool {
			id := user(r.Intn(*users))
			if _, err := guard.GenerateCode(id); err != nil {
				return false
			}
			return !guard.VerifyCode(id, "000000x").Valid
		}},
	}

	results := make([]phaseStats, 0, len(phases))
	for _, p := range phases {
		results = append(results, runPhase(p, *ops, *concurrency))
	}

	cleanup := guard.Cleanup()

	fmt.Println("---- results ----")
	for i, p := range phases {
		printStats(p.name, results[i])
	}
	fmt.Printf("cleanup: evicted=%d took=%s\n", cleanup.Total(), cleanup.Duration.Round(time.Microsecond))

	out, _ := json.MarshalIndent(guard.SecurityMetrics(), "", "  ")
	fmt.Printf("security metrics:\n%s\n", out)
}

func runPhase(p phase, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		rejected  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			local := make([]time.Duration, 0, ops/concurrency+1)
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					break
				}
				t0 := time.Now()
				ok := p.op(r, i)
				local = append(local, time.Since(t0))
				if !ok {
					atomic.AddInt64(&rejected, 1)
				}
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, rejected)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	rejected int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, rejected int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		rejected: rejected,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d rejected=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.rejected,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
