package identity

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "identities.enc")
	store, err := NewFileStore(path, []byte("test-master-password"))
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	return store
}

func snmpIdentity(name, community string) Identity {
	return Identity{Name: name, SNMP: SNMPCredentials{Version: "2c", Community: community}}
}

func TestStoreAddAndGet(t *testing.T) {
	store := newTestStore(t)
	id := Identity{
		Name: "hotspot",
		SNMP: SNMPCredentials{Version: "2c", Community: "public"},
		API:  APICredentials{Username: "monitor", Password: "s3cret", Insecure: true},
	}
	if err := store.Add(id); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	got, err := store.Get("hotspot")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.SNMP.Community != "public" {
		t.Errorf("expected community 'public', got %q", got.SNMP.Community)
	}
	if got.API.Password != "s3cret" || !got.API.Insecure {
		t.Errorf("API credentials not preserved: %+v", got.API)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListSortedWithoutSecrets(t *testing.T) {
	store := newTestStore(t)
	store.Add(Identity{Name: "b", SNMP: SNMPCredentials{Version: "3", Username: "user", AuthPass: "pw"}})
	store.Add(snmpIdentity("a", "x"))

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Name != "a" || summaries[1].Name != "b" {
		t.Fatalf("expected sorted [a b], got %+v", summaries)
	}
	if summaries[1].SNMPUser != "user" {
		t.Errorf("expected SNMP user in summary, got %+v", summaries[1])
	}
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(t)
	store.Add(snmpIdentity("x", "test"))
	if err := store.Remove("x"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := store.Get("x"); err == nil {
		t.Error("expected error after removing identity")
	}
	if err := store.Remove("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound removing twice, got %v", err)
	}
}

func TestStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	store.Add(snmpIdentity("x", "old"))
	if err := store.Update("x", snmpIdentity("x", "new")); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, _ := store.Get("x")
	if got.SNMP.Community != "new" {
		t.Errorf("expected 'new', got %q", got.SNMP.Community)
	}
}

func TestStoreUpdateRenameCollision(t *testing.T) {
	store := newTestStore(t)
	store.Add(snmpIdentity("x", "1"))
	store.Add(snmpIdentity("y", "2"))
	if err := store.Update("x", snmpIdentity("y", "3")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities.enc")
	password := []byte("test-password")

	store1, _ := NewFileStore(path, password)
	store1.Add(snmpIdentity("persist", "test"))

	store2, err := NewFileStore(path, password)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	got, err := store2.Get("persist")
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if got.SNMP.Community != "test" {
		t.Errorf("expected 'test', got %q", got.SNMP.Community)
	}

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "persist") {
		t.Error("vault file should not contain plaintext identity names")
	}
}

func TestStoreWrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identities.enc")

	store1, _ := NewFileStore(path, []byte("correct"))
	store1.Add(snmpIdentity("x", "test"))

	_, err := NewFileStore(path, []byte("wrong"))
	if !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt with wrong password, got %v", err)
	}
}

func TestStoreDuplicateAdd(t *testing.T) {
	store := newTestStore(t)
	store.Add(snmpIdentity("dup", "a"))
	if err := store.Add(snmpIdentity("dup", "b")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestIdentityValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr bool
	}{
		{"snmp v2c", snmpIdentity("a", "public"), false},
		{"api only", Identity{Name: "a", API: APICredentials{Username: "u"}}, false},
		{"no name", snmpIdentity("", "public"), true},
		{"empty", Identity{Name: "a"}, true},
		{"v3 without user", Identity{Name: "a", SNMP: SNMPCredentials{Version: "3"}}, true},
		{"bad version", Identity{Name: "a", SNMP: SNMPCredentials{Version: "4"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	kdf, err := newKDF()
	if err != nil {
		t.Fatalf("newKDF: %v", err)
	}
	key := kdf.key([]byte("pw"))
	sf, err := seal(key, kdf, []byte("hello"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	got, err := open(key, sf)
	if err != nil || string(got) != "hello" {
		t.Fatalf("open = %q, %v", got, err)
	}
	sf.Data[0] ^= 0xff
	if _, err := open(key, sf); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for tampered data, got %v", err)
	}
}
