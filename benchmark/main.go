// Package main provides a performance benchmarking tool for the sprintboard CLI.
// It generates feature lists of increasing size, then times import and report commands,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - sprintboard binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated feature lists and state files
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-history average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset       string
	Command       string
	NoHistoryTime string
	ColdTime      string
	WarmTime      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir       string
	Timeout       time.Duration
	NoHistoryRuns int
	HistoryRuns   int
	Datasets      map[string]int
	Order         []string
	Iterations    int
}

var (
	statuses   = []string{"未対応", "作業中", "PR中", "完了", "破棄"}
	categories = []string{"FE", "BE", "テスト", "フロント", "バックエンド", "(ﾃｽﾄ)"}
	assignees  = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank"}
)

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:       os.Args[1],
		Timeout:       5 * time.Minute,
		NoHistoryRuns: 3,
		HistoryRuns:   4,
		Datasets: map[string]int{
			"small":  100,
			"medium": 5_000,
			"large":  50_000,
			"huge":   250_000,
		},
		Order:      []string{"small", "medium", "large", "huge"},
		Iterations: 12,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	if err := generateDatasets(config); err != nil {
		fmt.Printf("Failed to generate datasets: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the sprintboard binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("sprintboard"); err != nil {
		return fmt.Errorf("sprintboard binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateDatasets writes one feature list per dataset plus a shared iteration file
func generateDatasets(config BenchmarkConfig) error {
	rng := rand.New(rand.NewPCG(42, 7))

	var iterations strings.Builder
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	for i := range config.Iterations {
		from := start.AddDate(0, 0, 14*i)
		to := from.AddDate(0, 0, 11)
		fmt.Fprintf(&iterations, "%s\t%s\t10\tSprint %d\n", from.Format("2006-01-02"), to.Format("2006-01-02"), i+1)
	}
	if err := os.WriteFile(filepath.Join(config.WorkDir, "iterations.tsv"), []byte(iterations.String()), 0o644); err != nil {
		return err
	}

	for _, name := range config.Order {
		var b strings.Builder
		b.WriteString("タイトル\tステータス\tイテレーション\tポイント\t見積(h)\t実績時間\t担当者\t分類\n")
		for i := range config.Datasets[name] {
			fmt.Fprintf(&b, "Feature %d\t%s\t%d\t%d\t%.1f\t%.1f\t%s\t%s\n",
				i,
				statuses[rng.IntN(len(statuses))],
				rng.IntN(config.Iterations)+1,
				rng.IntN(8)+1,
				rng.Float64()*16,
				rng.Float64()*16,
				assignees[rng.IntN(len(assignees))],
				categories[rng.IntN(len(categories))],
			)
		}
		path := filepath.Join(config.WorkDir, name+".tsv")
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return err
		}
		fmt.Printf("Generated %s with %d rows\n", path, config.Datasets[name])
	}
	return nil
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, no-history: %d runs, history: %d runs\n",
		len(config.Order), config.Timeout, config.NoHistoryRuns, config.HistoryRuns)

	for _, name := range config.Order {
		fmt.Printf("Benchmarking %s\n", name)
		tsvPath := filepath.Join(config.WorkDir, name+".tsv")

		results = append(results, runBenchmarkSuite(config, name, "import", "import --confirm", []string{"import", tsvPath, "--confirm"}))
		results = append(results, runBenchmarkSuite(config, name, "aggregate", "iteration aggregates", []string{"aggregate", "--output", "json"}))
		results = append(results, runBenchmarkSuite(config, name, "progress", "cumulative progress", []string{"progress", "--output", "json"}))
		results = append(results, runBenchmarkSuite(config, name, "velocity", "velocity report", []string{"velocity", "--output", "json"}))
	}

	return results
}

// runBenchmarkSuite runs both no-history and history benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, command, description string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, dataset)

	runPhase := func(historyBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		if err := prepareState(config, dataset, historyBackend); err != nil {
			fmt.Printf("  Warning: failed to prepare state: %v\n", err)
			return 0, "FAILED"
		}
		cold, times := runBenchmark(config, dataset, args, historyBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No import history
	_, noHistoryAvg := runPhase("none", config.NoHistoryRuns, "No-history")

	// Phase 2: SQLite import history
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:       dataset,
		Command:       command,
		NoHistoryTime: noHistoryAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// prepareState resets the dataset state file and loads iterations and features into it
func prepareState(config BenchmarkConfig, dataset, historyBackend string) error {
	statePath := stateFile(config, dataset)
	if err := os.Remove(statePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	if historyBackend != "none" {
		if output, err := sprintboardCommand(config, dataset, historyBackend, "history", "clear").CombinedOutput(); err != nil {
			return fmt.Errorf("history clear: %w: %s", err, output)
		}
	}
	steps := [][]string{
		{"settings", "iterations", filepath.Join(config.WorkDir, "iterations.tsv")},
		{"import", filepath.Join(config.WorkDir, dataset+".tsv"), "--confirm"},
	}
	for _, step := range steps {
		if output, err := sprintboardCommand(config, dataset, "none", step...).CombinedOutput(); err != nil {
			return fmt.Errorf("%s: %w: %s", step[0], err, output)
		}
	}
	return nil
}

// runBenchmark executes a sprintboard command multiple times with the given history backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dataset string, args []string, historyBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := sprintboardCommand(config, dataset, historyBackend, args...)

		done := make(chan bool)
		var cmdErr error

		go func() {
			_, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// sprintboardCommand builds a command bound to the dataset state file and history backend
func sprintboardCommand(config BenchmarkConfig, dataset, historyBackend string, args ...string) *exec.Cmd {
	cmd := exec.Command("sprintboard", args...)
	cmd.Dir = config.WorkDir
	cmd.Env = append(os.Environ(),
		"SPRINTBOARD_STATE_FILE="+stateFile(config, dataset),
		"SPRINTBOARD_HISTORY_BACKEND="+historyBackend,
		"SPRINTBOARD_LOG_LEVEL=error",
	)
	return cmd
}

func stateFile(config BenchmarkConfig, dataset string) string {
	return filepath.Join(config.WorkDir, dataset+".state.json")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/sprintboard_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoHistoryTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "import", "Import:")
	printCommandSummary(results, "aggregate", "Aggregate:")
	printCommandSummary(results, "progress", "Progress:")
	printCommandSummary(results, "velocity", "Velocity:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: No-history: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoHistoryTime, result.ColdTime, result.WarmTime)
		}
	}
}
