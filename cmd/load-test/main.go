package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type sendRequest struct {
	TenantID int64  `json:"tenant_id"`
	Channel  string `json:"channel"`
	Target   string `json:"target"`
	Message  string `json:"message"`
}

type LoadTestResult struct {
	TotalRequests   int
	SuccessCount    int32
	FailureCount    int32
	TotalDuration   time.Duration
	RequestsPerSec  float64
	AvgResponseTime time.Duration
	MinResponseTime time.Duration
	MaxResponseTime time.Duration
	Errors          map[string]int
}

// runLoadTest posts numRequests send requests; 200 and 202 count as success.
func runLoadTest(url string, tenantID int64, numRequests, concurrency int) *LoadTestResult {
	var (
		successCount  int32
		failureCount  int32
		totalRespTime int64
		minRespTime   int64 = int64(^uint64(0) >> 1)
		maxRespTime   int64
		errorsMu      sync.Mutex
		errs          = make(map[string]int)
		wg            sync.WaitGroup
		semaphore     = make(chan struct{}, concurrency)
		client        = &http.Client{Timeout: 30 * time.Second}
	)

	recordErr := func(msg string) {
		atomic.AddInt32(&failureCount, 1)
		errorsMu.Lock()
		errs[msg]++
		errorsMu.Unlock()
	}

	startTime := time.Now()

	fmt.Printf("\n🚀 Starting load test: %d requests with concurrency %d\n", numRequests, concurrency)
	fmt.Printf("Target: %s\n", url)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(reqNum int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			payload, _ := json.Marshal(sendRequest{
				TenantID: tenantID,
				Channel:  "personal",
				Target:   fmt.Sprintf("0812%08d", reqNum),
				Message:  fmt.Sprintf("Load test message #%d", reqNum),
			})

			reqStart := time.Now()
			resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
			respTimeNs := time.Since(reqStart).Nanoseconds()
			atomic.AddInt64(&totalRespTime, respTimeNs)

			for {
				oldMin := atomic.LoadInt64(&minRespTime)
				if respTimeNs >= oldMin || atomic.CompareAndSwapInt64(&minRespTime, oldMin, respTimeNs) {
					break
				}
			}
			for {
				oldMax := atomic.LoadInt64(&maxRespTime)
				if respTimeNs <= oldMax || atomic.CompareAndSwapInt64(&maxRespTime, oldMax, respTimeNs) {
					break
				}
			}

			if err != nil {
				recordErr(err.Error())
				return
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
				recordErr(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)))
				return
			}

			atomic.AddInt32(&successCount, 1)
			if reqNum%10 == 0 {
				fmt.Print(".")
			}
		}(i)
	}

	wg.Wait()
	totalDuration := time.Since(startTime)
	fmt.Println()

	return &LoadTestResult{
		TotalRequests:   numRequests,
		SuccessCount:    successCount,
		FailureCount:    failureCount,
		TotalDuration:   totalDuration,
		RequestsPerSec:  float64(numRequests) / totalDuration.Seconds(),
		AvgResponseTime: time.Duration(totalRespTime / int64(numRequests)),
		MinResponseTime: time.Duration(minRespTime),
		MaxResponseTime: time.Duration(maxRespTime),
		Errors:          errs,
	}
}

func printResults(result *LoadTestResult) {
	fmt.Printf("\n📊 Load Test Results\n")
	fmt.Printf("Total Requests:      %d\n", result.TotalRequests)
	fmt.Printf("✅ Success:           %d (%.2f%%)\n", result.SuccessCount, float64(result.SuccessCount)/float64(result.TotalRequests)*100)
	fmt.Printf("❌ Failed:            %d (%.2f%%)\n", result.FailureCount, float64(result.FailureCount)/float64(result.TotalRequests)*100)
	fmt.Printf("⏱️  Total Duration:    %v\n", result.TotalDuration)
	fmt.Printf("⚡ Requests/sec:      %.2f\n", result.RequestsPerSec)
	fmt.Printf("📈 Avg Response Time: %v\n", result.AvgResponseTime)
	fmt.Printf("⬇️  Min Response Time: %v\n", result.MinResponseTime)
	fmt.Printf("⬆️  Max Response Time: %v\n", result.MaxResponseTime)

	if len(result.Errors) > 0 {
		fmt.Println("❌ Errors:")
		for errMsg, count := range result.Errors {
			fmt.Printf("   • %s: %d times\n", errMsg, count)
		}
	}
}

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "dispatch-api base URL")
		path        = flag.String("path", "/api/send/async", "endpoint to load")
		tenantID    = flag.Int64("tenant", 1, "tenant id")
		requests    = flag.Int("n", 100, "number of requests")
		concurrency = flag.Int("c", 10, "concurrent connections")
	)
	flag.Parse()

	fmt.Println("🔍 Checking if server is running...")
	resp, err := http.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("❌ Error: Cannot connect to server at %s\n", *baseURL)
		fmt.Println("💡 Make sure dispatch-api is running")
		return
	}
	resp.Body.Close()
	fmt.Println("✅ Server is running")

	printResults(runLoadTest(*baseURL+*path, *tenantID, *requests, *concurrency))
}
