package source

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestLocalFetch(t *testing.T) {
	src := NewLocalSource("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	r, err := src.Fetch(context.Background())
	if err != nil {
		t.Skipf("host metrics unavailable: %v", err)
	}
	if r.MemoryTotalBytes == 0 {
		t.Error("expected non-zero memory total")
	}
	if r.MemoryFreeBytes > r.MemoryTotalBytes {
		t.Errorf("free memory %d exceeds total %d", r.MemoryFreeBytes, r.MemoryTotalBytes)
	}
	s := r.Sample(time.Now())
	if s.CPUUsage < 0 || s.CPUUsage > 100 {
		t.Errorf("cpu out of range: %f", s.CPUUsage)
	}
}
