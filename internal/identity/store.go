package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var (
	ErrNotFound  = errors.New("identity not found")
	ErrDuplicate = errors.New("identity already exists")
	ErrDecrypt   = errors.New("failed to decrypt identity vault (wrong master key?)")
)

// FileStore implements Provider on top of a single encrypted vault file.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	key        []byte
	kdf        kdfParams
	identities map[string]Identity
}

// NewFileStore opens the vault at path with password, creating an empty
// vault if the file does not exist. An empty password is allowed.
func NewFileStore(path string, password []byte) (*FileStore, error) {
	s := &FileStore{
		path:       path,
		identities: make(map[string]Identity),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		kdf, err := newKDF()
		if err != nil {
			return nil, err
		}
		s.kdf = kdf
		s.key = kdf.key(password)
		return s, s.save()
	}
	if err != nil {
		return nil, err
	}

	var sf sealedFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("corrupt identity vault: %w", err)
	}
	s.kdf = sf.KDF
	s.key = sf.KDF.key(password)

	plaintext, err := open(s.key, sf)
	if err != nil {
		return nil, err
	}
	var list []Identity
	if err := json.Unmarshal(plaintext, &list); err != nil {
		return nil, fmt.Errorf("corrupt identity data: %w", err)
	}
	for _, id := range list {
		s.identities[id.Name] = id
	}
	return s, nil
}

// save seals the identities and atomically replaces the vault file.
func (s *FileStore) save() error {
	plaintext, err := json.Marshal(s.sortedLocked())
	if err != nil {
		return err
	}
	sf, err := seal(s.key, s.kdf, plaintext)
	if err != nil {
		return err
	}
	data, err := json.Marshal(sf)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *FileStore) sortedLocked() []Identity {
	list := make([]Identity, 0, len(s.identities))
	for _, id := range s.identities {
		list = append(list, id)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// List returns summaries of all stored identities, sorted by name.
func (s *FileStore) List() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sortedLocked()
	summaries := make([]Summary, len(list))
	for i := range list {
		summaries[i] = list[i].Summarize()
	}
	return summaries, nil
}

// Get returns the identity with the given name, or ErrNotFound.
func (s *FileStore) Get(name string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &id, nil
}

// Add stores a new identity.
func (s *FileStore) Add(id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[id.Name]; exists {
		return ErrDuplicate
	}
	s.identities[id.Name] = id
	return s.save()
}

// Update replaces an existing identity, renaming it if id.Name differs.
func (s *FileStore) Update(name string, id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[name]; !exists {
		return ErrNotFound
	}
	if name != id.Name {
		if _, taken := s.identities[id.Name]; taken {
			return ErrDuplicate
		}
		delete(s.identities, name)
	}
	s.identities[id.Name] = id
	return s.save()
}

// Remove deletes an identity by name.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[name]; !exists {
		return ErrNotFound
	}
	delete(s.identities, name)
	return s.save()
}
