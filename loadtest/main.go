// Command loadtest drives a refresh storm against a running mock backend:
// every wave invalidates the cached access token and fires concurrent
// requests, so they all hit 401 together and race to refresh.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"dairyflow/client"
	"dairyflow/internal/metrics"
	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/logger"
	"dairyflow/service"
	"dairyflow/tokenstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	baseURL  = flag.String("url", "http://localhost:3000/api", "API base URL")
	totalVUs = flag.Int("c", 50, "Concurrent requests per wave")
	waves    = flag.Int("waves", 10, "Number of waves")
	pause    = flag.Duration("pause", 500*time.Millisecond, "Pause between waves")
	coalesce = flag.Bool("coalesce", false, "Share one refresh between concurrent 401s")
)

// countingObserver forwards to prometheus and keeps totals for the report.
type countingObserver struct {
	next      client.Observer
	requests  atomic.Int64
	refreshes atomic.Int64
	failed    atomic.Int64
}

func (o *countingObserver) ObserveRequest(method, status string, d time.Duration) {
	o.requests.Add(1)
	o.next.ObserveRequest(method, status, d)
}

func (o *countingObserver) RecordRefresh(ok bool) {
	o.refreshes.Add(1)
	if !ok {
		o.failed.Add(1)
	}
	o.next.RecordRefresh(ok)
}

func main() {
	flag.Parse()
	logger.InitLogger("cli")
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Error("load test failed", zap.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs := &countingObserver{next: metrics.NewClientObserver()}
	store := tokenstore.New(tokenstore.NewMemoryBackend())
	opts := []client.Option{client.WithObserver(obs)}
	if *coalesce {
		opts = append(opts, client.WithRefreshCoalescing())
	}
	svc := service.New(client.New(*baseURL, store, opts...), store)

	fmt.Printf("Starting refresh storm\n")
	fmt.Printf("   Target: %s\n", *baseURL)
	fmt.Printf("   VUs: %d x %d waves (coalesce=%v)\n", *totalVUs, *waves, *coalesce)

	id := uuid.NewString()[:8]
	if _, err := svc.Auth.RegisterCompany(ctx, v1.RegisterCompanyRequest{
		Email:    "loadtest-" + id + "@dairyflow.local",
		Password: "loadtest-" + id,
		Name:     "Load Test " + id,
	}); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	var okCount, errCount atomic.Int64
	var latencySum atomic.Int64
	start := time.Now()

	for w := 0; w < *waves; w++ {
		if err := store.SaveToken(ctx, "stale-"+uuid.NewString()); err != nil {
			return err
		}

		var wg sync.WaitGroup
		for i := 0; i < *totalVUs; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				t0 := time.Now()
				if _, err := svc.Dashboard.Summary(ctx); err != nil {
					errCount.Add(1)
					logger.Warn("request failed", zap.Error(err))
					return
				}
				okCount.Add(1)
				latencySum.Add(time.Since(t0).Milliseconds())
			}()
		}
		wg.Wait()

		fmt.Printf("[%s] Wave %d | OK: %d | Errors: %d | Refreshes: %d\n",
			time.Now().Format("15:04:05"), w+1, okCount.Load(), errCount.Load(), obs.refreshes.Load())
		time.Sleep(*pause)
	}

	avg := float64(0)
	if n := okCount.Load(); n > 0 {
		avg = float64(latencySum.Load()) / float64(n)
	}
	fmt.Printf("Done in %s | Requests sent: %d | Refreshes: %d (failed %d) | Avg latency: %.2f ms\n",
		time.Since(start).Round(time.Millisecond), obs.requests.Load(), obs.refreshes.Load(), obs.failed.Load(), avg)
	return nil
}
