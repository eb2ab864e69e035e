package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	applog "picklist/internal/log"
	"picklist/internal/domain"
)

// Doer issues HTTP requests. *http.Client satisfies it; tests inject a
// fiber app.Test adapter.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Remote is the sync-server-backed Store. Every operation goes to the
// server first; network or server failures surface as
// domain.ErrRemoteUnavailable, never as a silent fallback to local
// state. Successful writes are mirrored best-effort into a Local store
// so the device resumes fast after a restart.
type Remote struct {
	base   string
	client Doer
	token  string
	mirror *Local
}

// NewRemote builds a client for the sync server at baseURL. mirror may
// be nil to disable local mirroring.
func NewRemote(baseURL string, client Doer, mirror *Local) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{base: strings.TrimRight(baseURL, "/"), client: client, mirror: mirror}
}

// SetToken installs the API token used for authenticated calls.
func (s *Remote) SetToken(token string) { s.token = token }

// Login authenticates a picker and installs the returned token.
func (s *Remote) Login(code, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := s.do(http.MethodPost, "/api/v1/login",
		map[string]string{"code": code, "password": password}, &out)
	if err != nil {
		return err
	}
	s.token = out.Token
	return nil
}

func (s *Remote) CreateList(name string, items []domain.Item, initialSeconds int) (*domain.List, error) {
	var created domain.List
	err := s.do(http.MethodPost, "/api/v1/lists", map[string]any{
		"name":            name,
		"items":           items,
		"initial_seconds": initialSeconds,
	}, &created)
	if err != nil {
		return nil, err
	}
	if s.mirror != nil {
		if err := s.mirror.ImportList(&created, items); err != nil {
			applog.Error(nil, "remote.mirror.create", err, map[string]any{"list_id": created.ID})
		}
	}
	return &created, nil
}

func (s *Remote) SetItemCompletion(listID string, pos int, completed bool) error {
	err := s.do(http.MethodPatch, fmt.Sprintf("/api/v1/lists/%s/items/%d", listID, pos),
		map[string]bool{"completed": completed}, nil)
	if err != nil {
		return err
	}
	s.mirrorWrite("remote.mirror.item", listID, func(m *Local) error {
		return m.SetItemCompletion(listID, pos, completed)
	})
	return nil
}

func (s *Remote) SetAccumulatedSeconds(listID string, seconds int) error {
	err := s.do(http.MethodPut, "/api/v1/lists/"+listID+"/seconds",
		map[string]int{"seconds": seconds}, nil)
	if err != nil {
		return err
	}
	s.mirrorWrite("remote.mirror.seconds", listID, func(m *Local) error {
		return m.SetAccumulatedSeconds(listID, seconds)
	})
	return nil
}

func (s *Remote) MarkInProgress(listID, userCode string) (*domain.List, error) {
	var l domain.List
	if err := s.do(http.MethodPost, "/api/v1/lists/"+listID+"/start", nil, &l); err != nil {
		return nil, err
	}
	s.mirrorWrite("remote.mirror.start", listID, func(m *Local) error {
		_, err := m.MarkInProgress(listID, userCode)
		return err
	})
	return &l, nil
}

func (s *Remote) MarkCompleted(listID string) error {
	if err := s.do(http.MethodPost, "/api/v1/lists/"+listID+"/complete", nil, nil); err != nil {
		return err
	}
	s.mirrorWrite("remote.mirror.complete", listID, func(m *Local) error {
		return m.MarkCompleted(listID)
	})
	return nil
}

func (s *Remote) GetList(listID string) (*domain.List, error) {
	var out domain.ActiveList
	if err := s.do(http.MethodGet, "/api/v1/lists/"+listID, nil, &out); err != nil {
		return nil, err
	}
	return &out.List, nil
}

func (s *Remote) ActiveList(string) (*domain.ActiveList, error) {
	// The server scopes the active list to the token's user.
	var out domain.ActiveList
	found, err := s.doMaybe(http.MethodGet, "/api/v1/lists/active", nil, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

func (s *Remote) ListByStatus(statuses ...domain.Status) ([]domain.ListSummary, error) {
	parts := make([]string, len(statuses))
	for i, st := range statuses {
		parts[i] = string(st)
	}
	var out []domain.ListSummary
	err := s.do(http.MethodGet, "/api/v1/lists?status="+strings.Join(parts, ","), nil, &out)
	return out, err
}

func (s *Remote) ListCompleted() ([]domain.ListSummary, error) {
	var out []domain.ListSummary
	err := s.do(http.MethodGet, "/api/v1/lists/completed", nil, &out)
	return out, err
}

func (s *Remote) AllItemsCompleted(listID string) (bool, error) {
	var out domain.ActiveList
	if err := s.do(http.MethodGet, "/api/v1/lists/"+listID, nil, &out); err != nil {
		return false, err
	}
	if len(out.Items) == 0 {
		return false, nil
	}
	for _, it := range out.Items {
		if !it.Completed {
			return false, nil
		}
	}
	return true, nil
}

func (s *Remote) mirrorWrite(action, listID string, fn func(*Local) error) {
	if s.mirror == nil {
		return
	}
	if err := fn(s.mirror); err != nil {
		applog.Error(nil, action, err, map[string]any{"list_id": listID})
	}
}

// do issues one API call and decodes a 2xx JSON body into out.
func (s *Remote) do(method, path string, body, out any) error {
	_, err := s.doMaybe(method, path, body, out)
	return err
}

// doMaybe is do, with 204 reported as found=false instead of decoding.
func (s *Remote) doMaybe(method, path string, body, out any) (bool, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.base+path, rd)
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return false, fmt.Errorf("%w: decoding response: %v", domain.ErrRemoteUnavailable, err)
			}
		}
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, domain.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return false, fmt.Errorf("%w: %s", domain.ErrListLocked, apiError(resp.Body))
	case resp.StatusCode == http.StatusGone:
		return false, domain.ErrListCompleted
	default:
		msg := apiError(resp.Body)
		return false, fmt.Errorf("%w: %s %s: %d %s", domain.ErrRemoteUnavailable, method, path, resp.StatusCode, msg)
	}
}

func apiError(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error == "" {
		return "server error"
	}
	return body.Error
}
