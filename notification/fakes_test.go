package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

type fakeRuntime struct {
	acquired int
	released int
	err      error
}

func (r *fakeRuntime) Acquire() (func(), error) {
	if r.err != nil {
		return nil, r.err
	}
	r.acquired++
	return func() { r.released++ }, nil
}

type fakeEnv struct {
	exe     string
	roaming string
	exeErr  error
}

func (e *fakeEnv) Executable() (string, error) { return e.exe, e.exeErr }
func (e *fakeEnv) RoamingDir() (string, error) { return e.roaming, nil }

// memKeyStore is an in-memory registry. Keys map to their values; the
// default value has the empty name.
type memKeyStore struct {
	keys   map[string]map[string]string
	ops    []string
	failOn map[string]error // "op path" -> error
}

func newMemKeyStore() *memKeyStore {
	return &memKeyStore{keys: map[string]map[string]string{}, failOn: map[string]error{}}
}

func (s *memKeyStore) record(op, path string) error {
	s.ops = append(s.ops, op+" "+path)
	return s.failOn[op+" "+path]
}

func (s *memKeyStore) CreateKey(path string) error {
	if err := s.record("create", path); err != nil {
		return err
	}
	parts := strings.Split(path, `\`)
	for i := range parts {
		p := strings.Join(parts[:i+1], `\`)
		if _, ok := s.keys[p]; !ok {
			s.keys[p] = map[string]string{}
		}
	}
	return nil
}

func (s *memKeyStore) SetString(path, name, value string) error {
	if err := s.record("set", path); err != nil {
		return err
	}
	k, ok := s.keys[path]
	if !ok {
		return ErrKeyNotFound
	}
	k[name] = value
	return nil
}

func (s *memKeyStore) GetString(path, name string) (string, error) {
	k, ok := s.keys[path]
	if !ok {
		return "", ErrKeyNotFound
	}
	v, ok := k[name]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *memKeyStore) KeyExists(path string) (bool, error) {
	_, ok := s.keys[path]
	return ok, nil
}

func (s *memKeyStore) DeleteTree(path string) error {
	if err := s.record("delete", path); err != nil {
		return err
	}
	if _, ok := s.keys[path]; !ok {
		return ErrKeyNotFound
	}
	for k := range s.keys {
		if k == path || strings.HasPrefix(k, path+`\`) {
			delete(s.keys, k)
		}
	}
	return nil
}

// linkFile is the on-disk form the fake shell link persists.
type linkFile struct {
	Target string            `json:"target"`
	Props  map[string]string `json:"props"`
}

func propName(k PropertyKey) string {
	return fmt.Sprintf("%s,%d", k.FormatID, k.PID)
}

// fakeLinks hands out shell links that persist to JSON. fail maps a step
// name ("new", "target", "store", "set", "commit", "persist") to an error.
type fakeLinks struct {
	fail     map[string]error
	live     int
	newCalls int
}

func newFakeLinks() *fakeLinks { return &fakeLinks{fail: map[string]error{}} }

func (f *fakeLinks) NewShellLink() (ShellLink, error) {
	f.newCalls++
	if err := f.fail["new"]; err != nil {
		return nil, err
	}
	f.live++
	return &fakeLink{factory: f, file: linkFile{Props: map[string]string{}}}, nil
}

func (f *fakeLinks) LoadShellLink(path string) (ShellLink, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l := &fakeLink{factory: f}
	if err := json.Unmarshal(data, &l.file); err != nil {
		return nil, err
	}
	f.live++
	return l, nil
}

type fakeLink struct {
	factory *fakeLinks
	file    linkFile
}

func (l *fakeLink) SetTargetPath(path string) error {
	if err := l.factory.fail["target"]; err != nil {
		return err
	}
	l.file.Target = path
	return nil
}

func (l *fakeLink) TargetPath() (string, error) { return l.file.Target, nil }

func (l *fakeLink) PropertyStore() (PropertyStore, error) {
	if err := l.factory.fail["store"]; err != nil {
		return nil, err
	}
	l.factory.live++
	return &fakeStore{link: l, pending: map[string]string{}}, nil
}

func (l *fakeLink) Persist(path string) error {
	if err := l.factory.fail["persist"]; err != nil {
		return err
	}
	data, err := json.Marshal(l.file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (l *fakeLink) Release() { l.factory.live-- }

type fakeStore struct {
	link    *fakeLink
	pending map[string]string
}

func (s *fakeStore) SetValue(key PropertyKey, value string) error {
	if err := s.link.factory.fail["set"]; err != nil {
		return err
	}
	s.pending[propName(key)] = value
	return nil
}

func (s *fakeStore) Value(key PropertyKey) (string, error) {
	return s.link.file.Props[propName(key)], nil
}

func (s *fakeStore) Commit() error {
	if err := s.link.factory.fail["commit"]; err != nil {
		return err
	}
	for k, v := range s.pending {
		s.link.file.Props[k] = v
	}
	return nil
}

func (s *fakeStore) Release() { s.link.factory.live-- }

type harness struct {
	runtime *fakeRuntime
	keys    *memKeyStore
	links   *fakeLinks
	env     *fakeEnv
	svc     *Service
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		runtime: &fakeRuntime{},
		keys:    newMemKeyStore(),
		links:   newFakeLinks(),
		env:     &fakeEnv{exe: `C:\Apps\demo\demo.exe`, roaming: t.TempDir()},
	}
	logger := zap.NewNop()
	h.svc = NewService(h.runtime,
		NewRegistrar(h.keys, h.env, logger),
		NewShortcutManager(h.links, h.env, logger),
		opts, logger)
	return h
}
