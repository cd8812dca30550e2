// Command gosession-loadtest drives the request gate in-process and reports
// throughput and latency percentiles for the access and refresh paths.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/users"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type seeded struct {
	wallet string
	tokens goSession.TokenPair
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of users and sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gs-load", "refresh key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
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
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	repo := users.NewMemoryRepository()

	cfg := goSession.DefaultConfig()
	cfg.JWT.Secret = []byte("gosession-loadtest-secret-0123456789")
	cfg.Store.RedisPrefix = *prefix
	cfg.RateLimit.EnableLoginThrottle = false
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserProvider(users.NewProvider(repo)).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states := make([]seeded, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := range states {
		u, err := users.New(fmt.Sprintf("wallet-%06d", i), fmt.Sprintf("user-%d", i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "user build failed: %v\n", err)
			os.Exit(1)
		}
		if err := repo.Create(ctx, u); err != nil {
			fmt.Fprintf(os.Stderr, "user create failed: %v\n", err)
			os.Exit(1)
		}
		pair, err := engine.IssueSession(ctx, u.ID.String())
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = seeded{wallet: u.WalletAddress, tokens: pair}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	accessStats := runPhase(*ops, *concurrency, len(states), func(idx int) error {
		s := states[idx]
		_, err := engine.Authenticate(ctx, s.tokens.AccessToken, s.tokens.RefreshToken)
		return err
	})
	refreshStats := runPhase(*ops, *concurrency, len(states), func(idx int) error {
		// A bad access token forces the refresh fallback.
		s := states[idx]
		_, err := engine.Authenticate(ctx, "expired", s.tokens.RefreshToken)
		return err
	})
	loginStats := runPhase(*ops/10+1, *concurrency, len(states), func(idx int) error {
		_, err := engine.Login(ctx, states[idx].wallet)
		return err
	})

	fmt.Println("---- results ----")
	printStats("gate/access", accessStats)
	printStats("gate/refresh", refreshStats)
	printStats("login", loginStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("counters: allow_access=%d allow_refresh=%d reject=%d sessions=%d\n",
		snap.Counters[goSession.MetricGateAllowAccess],
		snap.Counters[goSession.MetricGateAllowRefresh],
		snap.Counters[goSession.MetricGateReject],
		snap.Counters[goSession.MetricSessionCreated],
	)
}

func runPhase(ops, concurrency, n int, op func(idx int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r.Intn(n))
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
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
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
