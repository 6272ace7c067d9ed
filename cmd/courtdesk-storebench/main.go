// Command courtdesk-storebench measures the Redis token store under
// concurrent restore and login traffic from many portal instances.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goCourt "github.com/MrEthical07/goCourt"
	"github.com/MrEthical07/goCourt/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	var (
		portals     = pflag.Int("portals", 10000, "number of portal sessions to seed")
		concurrency = pflag.Int("concurrency", 256, "number of concurrent workers")
		ops         = pflag.Int("ops", 100000, "operations per phase (restore + login)")
		redisAddr   = pflag.String("redis-addr", "", "redis address; if empty, COURTDESK_STORE_REDIS_ADDR or miniredis is used")
		prefix      = pflag.String("prefix", "courtdesk-bench", "key prefix, one namespace per portal below it")
	)
	pflag.Parse()

	if *portals <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "portals, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("COURTDESK_STORE_REDIS_ADDR")
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

	stores := make([]*store.RedisStore, *portals)
	fmt.Printf("seeding %d sessions...\n", *portals)
	startSeed := time.Now()
	for i := range stores {
		stores[i] = store.NewRedisStore(client, fmt.Sprintf("%s:%d", *prefix, i), store.DefaultKeys)
		if err := stores[i].Save(ctx, profileFor(i), tokenFor(i, 0)); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	restoreStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand, _ int) error {
		rec, err := stores[r.Intn(len(stores))].Load(ctx)
		if err != nil {
			return err
		}
		var u goCourt.User
		return rec.DecodeProfile(&u)
	})
	loginStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand, i int) error {
		idx := r.Intn(len(stores))
		return stores[idx].Save(ctx, profileFor(idx), tokenFor(idx, i))
	})

	fmt.Println("---- results ----")
	printStats("restore", restoreStats)
	printStats("login", loginStats)
}

// runPhase spreads ops calls of op over concurrency workers and records the
// latency of each.
func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand, i int) error) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
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

var benchRoles = goCourt.AllRoles()

func profileFor(i int) *goCourt.User {
	role := benchRoles[i%len(benchRoles)]
	return &goCourt.User{
		Email: fmt.Sprintf("user%d@court.com", i),
		Role:  role,
		Roles: []goCourt.Role{role},
	}
}

// tokenFor returns an opaque token. The store never parses it.
func tokenFor(i, generation int) string {
	return fmt.Sprintf("bench.%d.%d", i, generation)
}
