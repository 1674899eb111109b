package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var tenants = []string{"acme_corp", "beta_inc", "gamma_ltd", "delta_co"}

func main() {
	targetURL := flag.String("url", "http://localhost:8080/ingest", "Target URL for ingestion")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 60*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 17, "Requests per second limit")
	flag.Parse()

	log.Printf("Starting load test on %s", *targetURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 100) // Allow bursts up to 100

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{Timeout: 5 * time.Second}
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

			for {
				select {
				case <-ctx.Done():
					return
				default:
					if err := limiter.Wait(ctx); err != nil {
						return
					}

					req, err := buildRequest(ctx, *targetURL, rng)
					if err != nil {
						continue
					}

					resp, err := client.Do(req)
					if err != nil {
						errorCount.Add(1)
						continue
					}
					if resp.StatusCode == http.StatusAccepted {
						successCount.Add(1)
					} else {
						errorCount.Add(1)
					}
					resp.Body.Close()
				}
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + errorCount.Load()
	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (202 Accepted): %d", successCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", float64(totalRequests)/duration.Seconds())
}

// buildRequest alternates 50/50 between structured JSON and plain-text
// payloads, mirroring real client traffic. Both shapes carry PII so the
// worker's redaction path is exercised.
func buildRequest(ctx context.Context, targetURL string, rng *rand.Rand) (*http.Request, error) {
	tenant := tenants[rng.Intn(len(tenants))]
	requestID := uuid.NewString()

	if rng.Float64() < 0.5 {
		payload := fmt.Sprintf(`{"tenant_id": %q, "log_id": "load-%s", "text": "Test message %s from user 555-%04d"}`,
			tenant, requestID, requestID, rng.Intn(10000))
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewBufferString(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	body := fmt.Sprintf("Log entry %s from user%03d@email.com", requestID, rng.Intn(1000))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewBufferString(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Tenant-ID", tenant)
	return req, nil
}
