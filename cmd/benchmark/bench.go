package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	// The mock upstream sits on the Ollama port so the Ollama_Llama
	// catalog entry resolves to it without any config hooks.
	mockPort = 11434
	appPort  = 8081
)

var (
	streamChunk1 = []byte("data: {\"choices\":[{\"delta\":{\"content\":\"Bench\"}}]}\n\n")
	streamChunk2 = []byte("data: {\"choices\":[{\"delta\":{\"content\":\"mark\"}}]}\n\n")
	streamChunk3 = []byte("data: {\"choices\":[{\"delta\":{\"content\":\" reply\"}}]}\n\n")
	streamDone   = []byte("data: [DONE]\n\n")
	unaryResp    = []byte(`{"id":"bench-123","choices":[{"message":{"content":"Hello from the bench"}}]}`)
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	stream := flag.Bool("stream", false, "Benchmark /chat/stream instead of /chat")
	chaos := flag.Bool("chaos", false, "Simulate random client disconnections")
	flag.Parse()

	go startMockServer()

	fmt.Println("Building application...")
	buildCmd := exec.Command("go", "build", "-o", "bin/relay-server", "./cmd/server")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	// The app reads config.yaml from its working directory, so the bench
	// runs it inside a temp dir holding a config that routes everything
	// to the mock upstream.
	workDir, err := os.MkdirTemp("", "relay-bench")
	if err != nil {
		log.Fatalf("Failed to create work dir: %v", err)
	}
	defer os.RemoveAll(workDir)

	if err := os.WriteFile(filepath.Join(workDir, "config.yaml"), []byte(benchConfig), 0644); err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}

	binPath, err := filepath.Abs("bin/relay-server")
	if err != nil {
		log.Fatalf("Failed to resolve binary path: %v", err)
	}

	fmt.Println("Starting application...")
	cmd := exec.Command(binPath)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("SERVER_PORT=%d", appPort),
		"LOG_LEVEL=error",
	)

	logFile, _ := os.Create("bench_server.log")
	defer logFile.Close()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}
	defer func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}()

	waitForApp(fmt.Sprintf("http://localhost:%d/health", appPort))

	done := make(chan struct{})

	mode := "Unary"
	endpoint := "/chat"
	body := `{"message": "Hello", "provider": "Ollama_Llama"}`
	if *stream {
		mode = "Streaming"
		endpoint = "/chat/stream"
		body = `{"message": "Hello", "provider": "Ollama_Llama", "timeout": 10000}`
	}
	fmt.Printf("Running %s benchmark: %s duration, %d req/s\n", mode, *duration, *rate)

	targetURL := fmt.Sprintf("http://localhost:%d%s", appPort, endpoint)
	targeter := func(t *vegeta.Target) error {
		t.Method = "POST"
		t.URL = targetURL
		t.Body = []byte(body)
		t.Header = http.Header{
			"Content-Type": []string{"application/json"},
		}
		return nil
	}

	if *chaos {
		fmt.Println("CHAOS MODE ENABLED: Starting Chaos Monkey sidecar...")
		chaosConcurrency := *rate / 10
		if chaosConcurrency < 5 {
			chaosConcurrency = 5
		}
		if chaosConcurrency > 50 {
			chaosConcurrency = 50
		}
		streamURL := fmt.Sprintf("http://localhost:%d/chat/stream", appPort)
		go startChaosMonkey(streamURL, chaosConcurrency, done)
	}

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Benchmark") {
		metrics.Add(res)
	}
	metrics.Close()

	close(done)

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Success:         %.2f%%\n", metrics.Success*100)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Error Set (first 5 unique):")

		uniqueErrors := make(map[string]bool)
		count := 0
		for _, msg := range metrics.Errors {
			if !uniqueErrors[msg] && count < 5 {
				fmt.Println(msg)

				uniqueErrors[msg] = true
				count++
			}
		}
	}
}

func startChaosMonkey(url string, concurrency int, done chan struct{}) {
	fmt.Printf("Starting Chaos Monkey with %d concurrent disrupters (random disconnects 1-200ms)\n", concurrency)
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			client := &http.Client{
				Transport: &http.Transport{
					MaxIdleConns:        100,
					MaxIdleConnsPerHost: 100,
					DisableKeepAlives:   false,
				},
			}

			payload := `{"message": "Chaos Request", "provider": "Ollama_Llama", "timeout": 10000}`

			for {
				select {
				case <-done:
					return
				default:
					timeout := time.Duration(rand.Intn(200)+1) * time.Millisecond

					ctx, cancel := context.WithTimeout(context.Background(), timeout)
					req, _ := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(payload))
					req.Header.Set("Content-Type", "application/json")

					resp, err := client.Do(req)
					if err == nil {
						resp.Body.Close()
					}
					cancel()

					time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
				}
			}
		}()
	}
}

func startMockServer() {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"object": "list",
			"data": [
				{"id": "llama3.1", "object": "model", "created": 1687882411, "owned_by": "library"}
			]
		}`))
	})

	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)

		if val, ok := req["stream"].(bool); ok && val {
			w.Header().Set("Content-Type", "text/event-stream")
			flusher, _ := w.(http.Flusher)

			chunks := [][]byte{streamChunk1, streamChunk2, streamChunk3}
			for _, chunk := range chunks {
				time.Sleep(50 * time.Millisecond)
				w.Write(chunk)
				flusher.Flush()
			}
			w.Write(streamDone)
			flusher.Flush()
			return
		}

		time.Sleep(10 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		w.Write(unaryResp)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	_ = http.ListenAndServe(fmt.Sprintf(":%d", mockPort), mux)
}

func waitForApp(url string) {
	for i := 0; i < 20; i++ {
		resp, err := http.Get(url)
		if err == nil && resp.StatusCode == 200 {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Fatal("App timed out")
}

var benchConfig = `
server:
  port: "8081"
  env: development
registry:
  wishlist: ["Ollama_Llama"]
  probe: false
dispatch:
  default_provider: "Ollama_Llama"
  backups: ["Ollama_Llama"]
  default_timeout_sec: 20
store:
  dsn: "bench.db"
rate_limit:
  requests_per_second: 100000
  burst: 100000
`
