package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Identity is a named credential profile used to reach a device. SNMP
// targets read the SNMP section; REST targets read the API section.
type Identity struct {
	Name string          `json:"name"`
	SNMP SNMPCredentials `json:"snmp"`
	API  APICredentials  `json:"api"`
}

// SNMPCredentials configure an SNMP session.
type SNMPCredentials struct {
	Version   string `json:"version"`    // "1", "2c", "3"
	Community string `json:"community"`  // v1/v2c
	Username  string `json:"username"`   // v3
	AuthProto string `json:"auth_proto"` // "MD5", "SHA", "SHA256", "SHA512"
	AuthPass  string `json:"auth_pass"`
	PrivProto string `json:"priv_proto"` // "DES", "AES128", "AES192", "AES256"
	PrivPass  string `json:"priv_pass"`
}

// APICredentials configure the RouterOS REST API.
type APICredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Insecure skips TLS certificate verification, for routers with
	// self-signed certificates.
	Insecure bool `json:"insecure"`
}

// Summary is an Identity without secrets, safe to print.
type Summary struct {
	Name        string `json:"name"`
	SNMPVersion string `json:"snmp_version,omitempty"`
	SNMPUser    string `json:"snmp_user,omitempty"`
	APIUser     string `json:"api_user,omitempty"`
}

// Summarize strips secrets from the identity.
func (id *Identity) Summarize() Summary {
	return Summary{
		Name:        id.Name,
		SNMPVersion: id.SNMP.Version,
		SNMPUser:    id.SNMP.Username,
		APIUser:     id.API.Username,
	}
}

// HasSNMP reports whether the SNMP section is filled in.
func (id *Identity) HasSNMP() bool { return id.SNMP.Version != "" }

// HasAPI reports whether the API section is filled in.
func (id *Identity) HasAPI() bool { return id.API.Username != "" }

// Validate checks that the identity can be used by at least one source.
func (id *Identity) Validate() error {
	if strings.TrimSpace(id.Name) == "" {
		return errors.New("identity name is required")
	}
	if !id.HasSNMP() && !id.HasAPI() {
		return fmt.Errorf("identity %q has neither SNMP nor API credentials", id.Name)
	}
	switch id.SNMP.Version {
	case "", "1", "2c":
	case "3":
		if id.SNMP.Username == "" {
			return fmt.Errorf("identity %q: SNMPv3 requires a username", id.Name)
		}
	default:
		return fmt.Errorf("identity %q: unsupported SNMP version %q", id.Name, id.SNMP.Version)
	}
	return nil
}

// Provider is the interface for identity storage backends.
type Provider interface {
	List() ([]Summary, error)
	Get(name string) (*Identity, error)
	Add(id Identity) error
	Update(name string, id Identity) error
	Remove(name string) error
}
