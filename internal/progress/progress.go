// Package progress implements a ticker-driven progress reporter for a
// running parse, adapted from the teacher's Indexer.startReporting /
// printStatus (csvquery internal/indexer/indexer.go): a background
// goroutine polls a stats snapshot once a second and calls the
// caller's callback (spec.md §6/§4.10 [ADD] "progress callback"),
// instead of printing directly to stdout, since this is a library
// call and not the CLI.
package progress

import (
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats is a point-in-time snapshot of parse progress.
type Stats struct {
	RowsScanned  int64
	BytesScanned int64
	TotalBytes   int64
	Elapsed      time.Duration
}

// Rate returns rows scanned per second.
func (s Stats) Rate() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.RowsScanned) / secs
}

// String renders a single human-readable status line, in the style of
// the teacher's printStatus ("[phase] Rows: N | Rate: R/s | Elapsed:
// E | ETA: T"), using go-humanize for the byte/count formatting the
// teacher's own fmt.Printf calls did by hand.
func (s Stats) String() string {
	eta := "calculating..."
	if s.TotalBytes > 0 && s.BytesScanned > 0 {
		progress := float64(s.BytesScanned) / float64(s.TotalBytes)
		if progress > 0 {
			total := time.Duration(float64(s.Elapsed) / progress)
			remaining := total - s.Elapsed
			if remaining > 0 {
				eta = remaining.Round(time.Second).String()
			} else {
				eta = "finishing..."
			}
		}
	}
	return "rows=" + humanize.Comma(s.RowsScanned) +
		" bytes=" + humanize.Bytes(uint64(s.BytesScanned)) +
		" rate=" + humanize.Comma(int64(s.Rate())) + "/s" +
		" elapsed=" + s.Elapsed.Round(time.Second).String() +
		" eta=" + eta
}

// Reporter polls a pair of atomic counters on a fixed interval and
// invokes onTick with a Stats snapshot, exactly mirroring the
// teacher's ticker/stopReport channel pair.
type Reporter struct {
	rowsScanned  int64
	bytesScanned int64
	totalBytes   int64
	start        time.Time
	stop         chan struct{}
	onTick       func(Stats)
	interval     time.Duration
}

// NewReporter creates a Reporter over a known total byte size (0 if
// unknown). onTick is called from a background goroutine; it must not
// block.
func NewReporter(totalBytes int64, onTick func(Stats)) *Reporter {
	return &Reporter{
		totalBytes: totalBytes,
		stop:       make(chan struct{}),
		onTick:     onTick,
		interval:   time.Second,
	}
}

// AddRows atomically advances the row counter; safe to call
// concurrently from multiple parse workers.
func (r *Reporter) AddRows(n int64) { atomic.AddInt64(&r.rowsScanned, n) }

// AddBytes atomically advances the byte counter.
func (r *Reporter) AddBytes(n int64) { atomic.AddInt64(&r.bytesScanned, n) }

// Start launches the background ticker goroutine.
func (r *Reporter) Start() {
	if r.onTick == nil {
		return
	}
	r.start = time.Now()
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.onTick(r.snapshot())
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop halts the ticker goroutine. Safe to call once.
func (r *Reporter) Stop() {
	if r.onTick == nil {
		return
	}
	close(r.stop)
}

func (r *Reporter) snapshot() Stats {
	return Stats{
		RowsScanned:  atomic.LoadInt64(&r.rowsScanned),
		BytesScanned: atomic.LoadInt64(&r.bytesScanned),
		TotalBytes:   r.totalBytes,
		Elapsed:      time.Since(r.start),
	}
}
