package history

import (
	"fmt"
	"strings"
	"time"
)

// Sample is one point-in-time reading for a device. Usage fields are
// percentages in [0,100]; ActiveUsers is a non-negative count.
type Sample struct {
	Timestamp   int64   `json:"timestamp" yaml:"timestamp"` // epoch milliseconds
	CPUUsage    float64 `json:"cpuUsage" yaml:"cpuUsage"`
	MemoryUsage float64 `json:"memoryUsage" yaml:"memoryUsage"`
	DiskUsage   float64 `json:"diskUsage" yaml:"diskUsage"`
	ActiveUsers int     `json:"activeUsers" yaml:"activeUsers"`
}

// Time returns the sample timestamp as a time.Time.
func (s Sample) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Value returns the numeric value of the given field.
func (s Sample) Value(f Field) float64 {
	switch f {
	case FieldCPU:
		return s.CPUUsage
	case FieldMemory:
		return s.MemoryUsage
	case FieldDisk:
		return s.DiskUsage
	case FieldUsers:
		return float64(s.ActiveUsers)
	}
	return 0
}

// Sequence is a device's samples ordered by timestamp ascending.
type Sequence []Sample

// Last returns the newest sample.
func (s Sequence) Last() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}

// Field names one numeric column of a Sample.
type Field string

const (
	FieldCPU    Field = "cpuUsage"
	FieldMemory Field = "memoryUsage"
	FieldDisk   Field = "diskUsage"
	FieldUsers  Field = "activeUsers"
)

// Fields lists every chartable field in display order.
var Fields = []Field{FieldCPU, FieldMemory, FieldDisk, FieldUsers}

// ParseField accepts a field's JSON name or its short name
// (cpu, memory/mem, disk, users).
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu", "cpuusage":
		return FieldCPU, nil
	case "memory", "mem", "memoryusage":
		return FieldMemory, nil
	case "disk", "diskusage":
		return FieldDisk, nil
	case "users", "activeusers":
		return FieldUsers, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Short returns the short name used in config keys and file names.
func (f Field) Short() string {
	switch f {
	case FieldCPU:
		return "cpu"
	case FieldMemory:
		return "memory"
	case FieldDisk:
		return "disk"
	case FieldUsers:
		return "users"
	}
	return string(f)
}

// Label returns a human-readable column heading.
func (f Field) Label() string {
	switch f {
	case FieldCPU:
		return "CPU"
	case FieldMemory:
		return "Memory"
	case FieldDisk:
		return "Disk"
	case FieldUsers:
		return "Users"
	}
	return string(f)
}

// Format renders a value of this field for display.
func (f Field) Format(v float64) string {
	if f == FieldUsers {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f%%", v)
}

// SeriesFor projects one field out of a sequence, preserving order.
func SeriesFor(seq Sequence, f Field) []float64 {
	out := make([]float64, len(seq))
	for i, s := range seq {
		out[i] = s.Value(f)
	}
	return out
}
