package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tonhe/mikrochart/internal/dashboard"
	"github.com/tonhe/mikrochart/internal/identity"
	"github.com/tonhe/mikrochart/internal/source"
)

func probeCmd(args []string) {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	identityName := fs.String("identity", "", "Identity name for SNMP or REST authentication")
	kind := fs.String("source", dashboard.SourceSNMP, "Source to read: snmp, rest or local")
	port := fs.Int("port", dashboard.DefaultSNMPPort, "SNMP port")
	url := fs.String("url", "", "REST base URL (default https://HOST)")
	usersOID := fs.String("users-oid", "", "SNMP table whose rows count as active users")
	diskPath := fs.String("disk-path", "/", "Filesystem to report for the local source")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mikrochart probe [--identity NAME] [--source snmp|rest|local] [--port PORT] HOST")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	target := dashboard.Target{
		ID:       "probe",
		Source:   *kind,
		Port:     *port,
		UsersOID: *usersOID,
		URL:      *url,
		DiskPath: *diskPath,
	}
	if *kind != dashboard.SourceLocal {
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Error: HOST argument is required")
			fs.Usage()
			os.Exit(1)
		}
		target.Host = fs.Arg(0)
		if target.URL == "" {
			target.URL = "https://" + target.Host
		}
	}

	var id *identity.Identity
	if *identityName != "" {
		var err error
		id, err = openStore().Get(*identityName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	src, err := source.New(target, id, source.Options{Timeout: *timeout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*(*timeout))
	defer cancel()

	if snmp, ok := src.(*source.SNMPSource); ok {
		fmt.Fprintf(os.Stderr, "Probing %s over SNMP...\n", target.Host)
		d, err := snmp.Discover(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error probing device: %v\n", err)
			os.Exit(1)
		}
		printDiscovery(d)
	}

	reading, err := src.Fetch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading metrics: %v\n", err)
		os.Exit(1)
	}
	s := reading.Sample(time.Now())

	fmt.Println("Current reading:")
	fmt.Printf("  CPU     %6.1f%%\n", s.CPUUsage)
	fmt.Printf("  Memory  %6.1f%%  (%s free of %s)\n", s.MemoryUsage,
		formatBytes(reading.MemoryFreeBytes), formatBytes(reading.MemoryTotalBytes))
	fmt.Printf("  Disk    %6.1f%%  (%s free of %s)\n", s.DiskUsage,
		formatBytes(reading.DiskFreeBytes), formatBytes(reading.DiskTotalBytes))
	fmt.Printf("  Users   %6d\n", s.ActiveUsers)
}

func printDiscovery(d *source.Discovery) {
	fmt.Printf("Name:        %s\n", d.System.Name)
	fmt.Printf("Description: %s\n", d.System.Description)
	fmt.Printf("Uptime:      %s\n\n", d.System.Uptime.Truncate(time.Second))

	if len(d.Storage) == 0 {
		fmt.Println("No storage entries found.")
		fmt.Println()
		return
	}

	fmt.Printf("Found %d storage entries:\n\n", len(d.Storage))
	fmt.Printf("%-6s  %-9s  %-30s  %10s  %10s  %6s\n", "Index", "Type", "Description", "Size", "Used", "Used%")
	fmt.Printf("%-6s  %-9s  %-30s  %10s  %10s  %6s\n", "-----", "----", "-----------", "----", "----", "-----")

	for _, e := range d.Storage {
		fmt.Printf("%-6d  %-9s  %-30s  %10s  %10s  %5.1f%%\n",
			e.Index,
			e.Type,
			truncate(e.Description, 30),
			formatBytes(e.TotalBytes),
			formatBytes(e.UsedBytes),
			e.UsedPercent(),
		)
	}
	fmt.Println()
}

// formatBytes formats a byte count using binary units.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// truncate shortens a string to the given max length, adding "..." if needed.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
