package source

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tonhe/mikrochart/internal/identity"
)

// RouterOS REST paths.
const (
	pathSystemResource = "/rest/system/resource"
	pathHotspotActive  = "/rest/ip/hotspot/active"
)

// RESTSource reads metrics from the RouterOS REST API.
type RESTSource struct {
	baseURL string
	creds   identity.APICredentials
	client  *http.Client
}

// NewRESTSource creates a source for the router at baseURL.
func NewRESTSource(baseURL string, creds identity.APICredentials, timeout time.Duration) *RESTSource {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if creds.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &RESTSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  &http.Client{Timeout: timeout, Transport: transport},
	}
}

// Fetch reads system resources, then counts active hotspot sessions. Routers
// without the hotspot package report zero users.
func (s *RESTSource) Fetch(ctx context.Context) (Reading, error) {
	env, err := s.get(ctx, pathSystemResource)
	if err != nil {
		return Reading{}, err
	}
	r, err := parseResource(env)
	if err != nil {
		return Reading{}, err
	}

	env, err = s.get(ctx, pathHotspotActive)
	var status errStatusNotOK
	switch {
	case errors.As(err, &status) && int(status) == http.StatusNotFound:
		return r, nil
	case err != nil:
		return Reading{}, err
	}
	users, err := countSessions(env)
	if err != nil {
		return Reading{}, err
	}
	r.ActiveUserCount = users
	return r, nil
}

func (s *RESTSource) get(ctx context.Context, path string) (Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return Envelope{}, err
	}
	req.Header.Set("Accept", "application/json")
	if s.creds.Username != "" {
		req.SetBasicAuth(s.creds.Username, s.creds.Password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Envelope{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Envelope{}, errStatusNotOK(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, err
	}
	return Normalize(body), nil
}

var resourceFields = []string{"cpu-load", "free-memory", "total-memory", "free-hdd-space", "total-hdd-space"}

// parseResource extracts the system resource fields. RouterOS encodes
// numbers as strings, which gjson converts transparently.
func parseResource(env Envelope) (Reading, error) {
	switch env.Outcome {
	case Empty:
		return Reading{}, fmt.Errorf("%s: %w", pathSystemResource, ErrEmptyResponse)
	case Malformed:
		return Reading{}, fmt.Errorf("%s: %w: %s", pathSystemResource, ErrMalformed, env.Reason)
	}

	fields := gjson.GetManyBytes(env.Payload, resourceFields...)
	for i, f := range fields {
		if !f.Exists() {
			return Reading{}, errFieldMissing(resourceFields[i])
		}
	}
	return Reading{
		CPULoadPercent:   fields[0].Float(),
		MemoryFreeBytes:  fields[1].Uint(),
		MemoryTotalBytes: fields[2].Uint(),
		DiskFreeBytes:    fields[3].Uint(),
		DiskTotalBytes:   fields[4].Uint(),
	}, nil
}

func countSessions(env Envelope) (int, error) {
	switch env.Outcome {
	case Empty:
		return 0, nil
	case Malformed:
		return 0, fmt.Errorf("%s: %w: %s", pathHotspotActive, ErrMalformed, env.Reason)
	}
	list := gjson.ParseBytes(env.Payload)
	if !list.IsArray() {
		return 0, fmt.Errorf("%s: %w: expected a list", pathHotspotActive, ErrMalformed)
	}
	return int(list.Get("#").Int()), nil
}

func (s *RESTSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
