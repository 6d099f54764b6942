// Command tapecsv-bench generates a synthetic CSV and reports
// ParseFile throughput, adapted from the teacher's cmd/benchmark
// (which generated a CSV and ran the indexer instead).
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tapecsv/tapecsv"
)

func main() {
	sizeMB := 500
	if len(os.Args) > 1 {
		if n, err := strconv.Atoi(os.Args[1]); err == nil && n > 0 {
			sizeMB = n
		}
	}

	fmt.Printf("Generating %s CSV...\n", humanize.Bytes(uint64(sizeMB)*1024*1024))
	tmpDir, err := os.MkdirTemp("", "tapecsv_bench")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, "bench.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		panic(err)
	}

	w := bufio.NewWriterSize(f, 64*1024)
	w.WriteString("id,code,value,description\n")

	bytesWritten := int64(0)
	limit := int64(sizeMB) * 1024 * 1024
	rows := 0
	buf := make([]byte, 0, 1024)
	rng := rand.New(rand.NewSource(123))

	for bytesWritten < limit {
		rows++
		buf = buf[:0]
		buf = fmt.Appendf(buf, "%d,US-%d,%d,\"Description for item %d with some padding to make it longer\"\n", rows, rng.Intn(1000), rng.Intn(10000), rows)
		n, _ := w.Write(buf)
		bytesWritten += int64(n)
	}
	w.Flush()
	f.Close()

	fmt.Printf("Generated %s rows (%s)\n", humanize.Comma(int64(rows)), humanize.Bytes(uint64(bytesWritten)))
	fmt.Println("Starting ParseFile...")

	start := time.Now()
	file, err := tapecsv.ParseFile(
		tapecsv.FromPath(csvPath),
		tapecsv.WithWorkers(runtime.NumCPU()),
		tapecsv.WithOnProgress(func(rowsScanned, bytesScanned int64) {
			fmt.Printf("\rprogress: rows=%s bytes=%s", humanize.Comma(rowsScanned), humanize.Bytes(uint64(bytesScanned)))
		}),
	)
	if err != nil {
		panic(err)
	}
	defer file.Close()
	elapsed := time.Since(start)

	mbPerSec := float64(bytesWritten) / 1024 / 1024 / elapsed.Seconds()
	fmt.Printf("\n--------------------------------------------------\n")
	fmt.Printf("Rows parsed: %s\n", humanize.Comma(int64(file.Rows())))
	fmt.Printf("Columns:     %v\n", file.Names())
	fmt.Printf("Types:       %v\n", file.Types())
	fmt.Printf("Warnings:    %d\n", len(file.Warnings()))
	fmt.Printf("Throughput:  %.2f MB/s\n", mbPerSec)
	fmt.Printf("Time:        %v\n", elapsed)
	fmt.Printf("--------------------------------------------------\n")
}
