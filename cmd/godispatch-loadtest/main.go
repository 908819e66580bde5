// Command godispatch-loadtest drives a dispatcher against a simulated backend
// under concurrency, with session expiry injected at a configurable rate, and
// reports latency percentiles plus the engine's own counters.
//
// Run against miniredis (default) or a real Redis via -redis-addr / REDIS_ADDR.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goDispatch "github.com/MrEthical07/goDispatch"
	"github.com/MrEthical07/goDispatch/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		workers    = flag.Int("workers", 64, "number of concurrent workers")
		ops        = flag.Int("ops", 100000, "total dispatch operations")
		expiryRate = flag.Float64("expiry-rate", 0.001, "probability that the backend invalidates the session before a request")
		redisAddr  = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix     = flag.String("prefix", "gd", "session key prefix")
	)
	flag.Parse()

	if *workers <= 0 || *ops <= 0 || *expiryRate < 0 || *expiryRate > 1 {
		fmt.Fprintln(os.Stderr, "workers and ops must be > 0; expiry-rate must be in [0,1]")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store := session.NewRedisStore(client, *prefix)
	defer func() { _ = store.Close() }()

	if err := store.SetCredentials(ctx, session.Credentials{
		Login:    "loadtest@example.com",
		Password: "loadtest-secret",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "seed credentials: %v\n", err)
		os.Exit(1)
	}

	backend := newSimBackend(*expiryRate)
	if err := store.MergeAuthToken(ctx, backend.issueToken()); err != nil {
		fmt.Fprintf(os.Stderr, "seed token: %v\n", err)
		os.Exit(1)
	}

	d, err := goDispatch.New().
		WithPartner("loadtest-partner", "loadtest-partner-pass").
		WithTransport(backend).
		WithSessionStore(store).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build dispatcher: %v\n", err)
		os.Exit(1)
	}
	defer d.Close()

	fmt.Printf("dispatching %d ops across %d workers (expiry rate %.4f)...\n", *ops, *workers, *expiryRate)
	stats := runDispatchPhase(ctx, d, *ops, *workers)

	fmt.Println("---- results ----")
	printStats("dispatch", stats)
	printCounters(d.MetricsSnapshot())
}

func runDispatchPhase(ctx context.Context, d *goDispatch.Dispatcher, ops, workers int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		deferred  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}

				t0 := time.Now()
				_, err := d.Dispatch(ctx, goDispatch.CommandGet, map[string]any{
					"returnValueList": "personalDetails",
				}, goDispatch.TransportPost)
				lat := time.Since(t0)

				switch {
				case err == nil:
				case errors.Is(err, goDispatch.ErrRecoveredViaReauth):
					atomic.AddInt64(&deferred, 1)
				default:
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, lat)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)

	stats := computeStats(total, latencies, failures)
	stats.deferred = deferred
	return stats
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	deferred int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
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
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%-9s ops=%d failures=%d deferred=%d total=%s ops/s=%.0f p50=%s p95=%s p99=%s\n",
		name, s.ops, s.failures, s.deferred,
		s.total.Round(time.Millisecond), s.opsPerS,
		s.p50, s.p95, s.p99,
	)
}

func printCounters(snap goDispatch.MetricsSnapshot) {
	rows := []struct {
		label string
		id    goDispatch.MetricID
	}{
		{"dispatch_success", goDispatch.MetricDispatchSuccess},
		{"session_expired", goDispatch.MetricSessionExpired},
		{"request_queued", goDispatch.MetricRequestQueued},
		{"reauth_success", goDispatch.MetricReauthSuccess},
		{"reauth_failure", goDispatch.MetricReauthFailure},
		{"replay_success", goDispatch.MetricReplaySuccess},
		{"replay_failure", goDispatch.MetricReplayFailure},
	}
	fmt.Println("---- engine counters ----")
	for _, row := range rows {
		fmt.Printf("%-18s %d\n", row.label, snap.Counters[row.id])
	}
}

// simBackend plays the API server: commands carrying the current token
// succeed, and with probability expiryRate the session is invalidated just
// before a request, forcing the engine through a full recovery cycle.
type simBackend struct {
	mu         sync.Mutex
	valid      string
	generation int
	expiryRate float64
	rng        *rand.Rand
}

func newSimBackend(expiryRate float64) *simBackend {
	return &simBackend{
		expiryRate: expiryRate,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// issueToken rotates the server-side session and returns the new token.
func (s *simBackend) issueToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotateLocked()
}

func (s *simBackend) rotateLocked() string {
	s.generation++
	s.valid = fmt.Sprintf("sim-token-%d", s.generation)
	return s.valid
}

func (s *simBackend) Send(_ context.Context, command string, parameters map[string]any, _ goDispatch.TransportType) (goDispatch.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if command == goDispatch.CommandAuthenticate {
		return goDispatch.Response{
			JSONCode:  goDispatch.CodeSuccess,
			AuthToken: s.rotateLocked(),
		}, nil
	}

	if s.rng.Float64() < s.expiryRate {
		s.rotateLocked()
	}

	if parameters["authToken"] != s.valid {
		return goDispatch.Response{
			JSONCode: goDispatch.CodeExpiredAuthToken,
			Message:  "Auth token expired",
		}, nil
	}

	return goDispatch.Response{JSONCode: goDispatch.CodeSuccess}, nil
}
