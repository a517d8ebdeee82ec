package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// SNMPv2-MIB system group scalars.
const (
	OIDsysDescr  = "1.3.6.1.2.1.1.1.0"
	OIDsysUpTime = "1.3.6.1.2.1.1.3.0"
	OIDsysName   = "1.3.6.1.2.1.1.5.0"
)

var storageTypes = map[string]string{
	"1.3.6.1.2.1.25.2.1.1": "other",
	OIDhrStorageRam:        "ram",
	"1.3.6.1.2.1.25.2.1.3": "virtual",
	OIDhrStorageFixedDisk:  "disk",
	"1.3.6.1.2.1.25.2.1.5": "removable",
	"1.3.6.1.2.1.25.2.1.9": "flash",
}

// SystemInfo identifies a device.
type SystemInfo struct {
	Name        string
	Description string
	Uptime      time.Duration
}

// StorageEntry is one row of a device's hrStorageTable.
type StorageEntry struct {
	Index       int
	Description string
	Type        string
	TotalBytes  uint64
	UsedBytes   uint64
}

// UsedPercent returns the used share of the entry, or 0 for empty entries.
func (e StorageEntry) UsedPercent() float64 {
	if e.TotalBytes == 0 {
		return 0
	}
	return float64(e.UsedBytes) / float64(e.TotalBytes) * 100
}

// Discovery is what a probe learns about a device.
type Discovery struct {
	System  SystemInfo
	Storage []StorageEntry
}

// Discover reads the system group and the full storage table, so a user can
// check which rows feed the memory and disk figures.
func (s *SNMPSource) Discover(ctx context.Context) (*Discovery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connectLocked(ctx); err != nil {
		return nil, err
	}

	result, err := s.client.Get([]string{OIDsysName, OIDsysDescr, OIDsysUpTime})
	if err != nil {
		return nil, fmt.Errorf("snmp get system on %s: %w", s.client.Target, err)
	}
	d := &Discovery{System: systemInfo(result.Variables)}

	rows, err := s.storageRowsLocked()
	if err != nil {
		return nil, err
	}
	d.Storage = storageEntries(rows)
	return d, nil
}

func systemInfo(vars []gosnmp.SnmpPDU) SystemInfo {
	var info SystemInfo
	for _, v := range vars {
		switch strings.TrimPrefix(v.Name, ".") {
		case OIDsysName:
			info.Name = octetString(v)
		case OIDsysDescr:
			info.Description = octetString(v)
		case OIDsysUpTime:
			ticks := gosnmp.ToBigInt(v.Value).Int64()
			info.Uptime = time.Duration(ticks) * 10 * time.Millisecond
		}
	}
	return info
}

func storageEntries(rows map[int]*storageRow) []StorageEntry {
	out := make([]StorageEntry, 0, len(rows))
	for _, row := range rows {
		units := row.units
		if units == 0 {
			units = 1
		}
		typ, ok := storageTypes[row.kind]
		if !ok {
			typ = "unknown"
		}
		out = append(out, StorageEntry{
			Index:       row.index,
			Description: row.descr,
			Type:        typ,
			TotalBytes:  row.size * units,
			UsedBytes:   min(row.used, row.size) * units,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
