package source

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/tonhe/mikrochart/internal/identity"
)

// HOST-RESOURCES-MIB OIDs.
const (
	OIDhrProcessorLoad          = "1.3.6.1.2.1.25.3.3.1.2"
	OIDhrStorageType            = "1.3.6.1.2.1.25.2.3.1.2"
	OIDhrStorageDescr           = "1.3.6.1.2.1.25.2.3.1.3"
	OIDhrStorageAllocationUnits = "1.3.6.1.2.1.25.2.3.1.4"
	OIDhrStorageSize            = "1.3.6.1.2.1.25.2.3.1.5"
	OIDhrStorageUsed            = "1.3.6.1.2.1.25.2.3.1.6"

	OIDhrStorageRam       = "1.3.6.1.2.1.25.2.1.2"
	OIDhrStorageFixedDisk = "1.3.6.1.2.1.25.2.1.4"
)

// SNMPSource polls HOST-RESOURCES-MIB on a router. When usersOID is set,
// the number of rows under it is reported as the active user count.
type SNMPSource struct {
	mu       sync.Mutex
	client   *gosnmp.GoSNMP
	usersOID string
	conn     bool
}

// NewSNMPSource builds an SNMP source. The connection is opened on first Fetch.
func NewSNMPSource(host string, port int, creds *identity.SNMPCredentials, usersOID string, timeout time.Duration) (*SNMPSource, error) {
	client, err := NewSNMPClient(host, port, creds, timeout)
	if err != nil {
		return nil, err
	}
	return &SNMPSource{client: client, usersOID: strings.TrimPrefix(usersOID, ".")}, nil
}

// NewSNMPClient creates a gosnmp.GoSNMP client configured from SNMP credentials.
func NewSNMPClient(host string, port int, creds *identity.SNMPCredentials, timeout time.Duration) (*gosnmp.GoSNMP, error) {
	if port == 0 {
		port = 161
	}
	client := &gosnmp.GoSNMP{
		Target:  host,
		Port:    uint16(port),
		Timeout: timeout,
		Retries: 1,
		Context: context.Background(),
	}

	switch creds.Version {
	case "1":
		client.Version = gosnmp.Version1
		client.Community = creds.Community
	case "2c":
		client.Version = gosnmp.Version2c
		client.Community = creds.Community
	case "3":
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel
		client.MsgFlags = snmpv3MsgFlags(creds)
		client.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 creds.Username,
			AuthenticationProtocol:   snmpv3AuthProto(creds.AuthProto),
			AuthenticationPassphrase: creds.AuthPass,
			PrivacyProtocol:          snmpv3PrivProto(creds.PrivProto),
			PrivacyPassphrase:        creds.PrivPass,
		}
	default:
		return nil, fmt.Errorf("unsupported SNMP version: %s", creds.Version)
	}
	return client, nil
}

func snmpv3MsgFlags(c *identity.SNMPCredentials) gosnmp.SnmpV3MsgFlags {
	switch {
	case c.PrivProto != "" && c.PrivPass != "":
		return gosnmp.AuthPriv
	case c.AuthProto != "" && c.AuthPass != "":
		return gosnmp.AuthNoPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

func snmpv3AuthProto(proto string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToUpper(proto) {
	case "MD5":
		return gosnmp.MD5
	case "SHA":
		return gosnmp.SHA
	case "SHA256":
		return gosnmp.SHA256
	case "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.NoAuth
	}
}

func snmpv3PrivProto(proto string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToUpper(proto) {
	case "DES":
		return gosnmp.DES
	case "AES", "AES128":
		return gosnmp.AES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	default:
		return gosnmp.NoPriv
	}
}

// Fetch walks the processor and storage tables and, if configured, the
// users table.
func (s *SNMPSource) Fetch(ctx context.Context) (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connectLocked(ctx); err != nil {
		return Reading{}, err
	}

	var loads []float64
	if err := s.walk(OIDhrProcessorLoad, func(_ int, pdu gosnmp.SnmpPDU) {
		loads = append(loads, float64(gosnmp.ToBigInt(pdu.Value).Int64()))
	}); err != nil {
		return Reading{}, err
	}

	rows, err := s.storageRowsLocked()
	if err != nil {
		return Reading{}, err
	}

	users := 0
	if s.usersOID != "" {
		if err := s.walk(s.usersOID, func(int, gosnmp.SnmpPDU) { users++ }); err != nil {
			return Reading{}, err
		}
	}

	r := summarizeStorage(rows)
	r.CPULoadPercent = mean(loads)
	r.ActiveUserCount = users
	return r, nil
}

func (s *SNMPSource) connectLocked(ctx context.Context) error {
	s.client.Context = ctx
	if s.conn {
		return nil
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("snmp connect %s: %w", s.client.Target, err)
	}
	s.conn = true
	return nil
}

// storageRowsLocked walks hrStorageTable into rows keyed by hrStorageIndex.
func (s *SNMPSource) storageRowsLocked() (map[int]*storageRow, error) {
	rows := make(map[int]*storageRow)
	row := func(idx int) *storageRow {
		if rows[idx] == nil {
			rows[idx] = &storageRow{index: idx}
		}
		return rows[idx]
	}
	columns := []struct {
		oid string
		set func(*storageRow, gosnmp.SnmpPDU)
	}{
		{OIDhrStorageType, func(r *storageRow, p gosnmp.SnmpPDU) { r.kind = oidValue(p) }},
		{OIDhrStorageDescr, func(r *storageRow, p gosnmp.SnmpPDU) { r.descr = octetString(p) }},
		{OIDhrStorageAllocationUnits, func(r *storageRow, p gosnmp.SnmpPDU) { r.units = toUint(p.Value) }},
		{OIDhrStorageSize, func(r *storageRow, p gosnmp.SnmpPDU) { r.size = toUint(p.Value) }},
		{OIDhrStorageUsed, func(r *storageRow, p gosnmp.SnmpPDU) { r.used = toUint(p.Value) }},
	}
	for _, col := range columns {
		if err := s.walk(col.oid, func(idx int, pdu gosnmp.SnmpPDU) { col.set(row(idx), pdu) }); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// walk visits every PDU under oid, passing the last OID component as the row index.
func (s *SNMPSource) walk(oid string, handler func(int, gosnmp.SnmpPDU)) error {
	fn := func(pdu gosnmp.SnmpPDU) error {
		if idx, ok := rowIndex(pdu.Name); ok {
			handler(idx, pdu)
		}
		return nil
	}
	var err error
	if s.client.Version == gosnmp.Version1 {
		err = s.client.Walk(oid, fn)
	} else {
		err = s.client.BulkWalk(oid, fn)
	}
	if err != nil {
		return fmt.Errorf("snmp walk %s on %s: %w", oid, s.client.Target, err)
	}
	return nil
}

// Close releases the UDP socket.
func (s *SNMPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn && s.client.Conn != nil {
		s.conn = false
		return s.client.Conn.Close()
	}
	return nil
}

type storageRow struct {
	index int
	kind  string
	descr string
	units uint64
	size  uint64
	used  uint64
}

// summarizeStorage totals RAM and fixed-disk rows into a Reading.
func summarizeStorage(rows map[int]*storageRow) Reading {
	var r Reading
	for _, row := range rows {
		units := row.units
		if units == 0 {
			units = 1
		}
		used := row.used
		if used > row.size {
			used = row.size
		}
		total := row.size * units
		free := (row.size - used) * units
		switch row.kind {
		case OIDhrStorageRam:
			r.MemoryTotalBytes += total
			r.MemoryFreeBytes += free
		case OIDhrStorageFixedDisk:
			r.DiskTotalBytes += total
			r.DiskFreeBytes += free
		}
	}
	return r
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func rowIndex(name string) (int, bool) {
	i := strings.LastIndexByte(name, '.')
	idx, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, false
	}
	return idx, true
}

func oidValue(pdu gosnmp.SnmpPDU) string {
	if s, ok := pdu.Value.(string); ok {
		return strings.TrimPrefix(s, ".")
	}
	return ""
}

func octetString(pdu gosnmp.SnmpPDU) string {
	if b, ok := pdu.Value.([]byte); ok {
		return string(b)
	}
	return ""
}

func toUint(v interface{}) uint64 {
	b := gosnmp.ToBigInt(v)
	if b.Sign() < 0 || b.Cmp(new(big.Int).SetUint64(^uint64(0))) > 0 {
		return 0
	}
	return b.Uint64()
}
