//go:build windows

package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/Guliveer/toastreg/notification"
)

// RegistryStore implements notification.KeyStore over one predefined root.
type RegistryStore struct {
	root registry.Key
}

// NewRegistryStore creates a key store rooted at root.
func NewRegistryStore(root registry.Key) *RegistryStore {
	return &RegistryStore{root: root}
}

func mapNotExist(err error) error {
	if errors.Is(err, registry.ErrNotExist) {
		return notification.ErrKeyNotFound
	}
	return err
}

func (s *RegistryStore) CreateKey(path string) error {
	k, _, err := registry.CreateKey(s.root, path, registry.CREATE_SUB_KEY|registry.SET_VALUE)
	if err != nil {
		return err
	}
	return k.Close()
}

func (s *RegistryStore) SetString(path, name, value string) error {
	k, err := registry.OpenKey(s.root, path, registry.SET_VALUE)
	if err != nil {
		return mapNotExist(err)
	}
	defer k.Close()
	return k.SetStringValue(name, value)
}

func (s *RegistryStore) GetString(path, name string) (string, error) {
	k, err := registry.OpenKey(s.root, path, registry.QUERY_VALUE)
	if err != nil {
		return "", mapNotExist(err)
	}
	defer k.Close()
	v, _, err := k.GetStringValue(name)
	if err != nil {
		return "", mapNotExist(err)
	}
	return v, nil
}

func (s *RegistryStore) KeyExists(path string) (bool, error) {
	k, err := registry.OpenKey(s.root, path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	k.Close()
	return true, nil
}

// DeleteTree removes path depth-first; RegDeleteKey refuses keys that still
// have children.
func (s *RegistryStore) DeleteTree(path string) error {
	k, err := registry.OpenKey(s.root, path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		return mapNotExist(err)
	}
	names, err := k.ReadSubKeyNames(-1)
	k.Close()
	if err != nil {
		return fmt.Errorf("enumerating %s: %w", path, err)
	}
	for _, name := range names {
		if err := s.DeleteTree(path + `\` + name); err != nil {
			return err
		}
	}
	return mapNotExist(registry.DeleteKey(s.root, path))
}
