package config

import (
	"fmt"
)

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
	Secret bool
}

// ShowAll returns every config key with its current value. Secret values are
// reported only as set or unset.
func ShowAll(cfg Config) []KeyInfo {
	result := make([]KeyInfo, 0, len(specs))
	for _, s := range specs {
		v := fmt.Sprintf("%v", s.extract(cfg))
		if s.secret {
			if v == "" {
				v = "(unset)"
			} else {
				v = "(set)"
			}
		}
		result = append(result, KeyInfo{Key: s.key, EnvVar: s.env, Value: v, Secret: s.secret})
	}
	return result
}

// SetKey persists a config key. Secrets go to the platform secret store,
// everything else to the config file.
func SetKey(key, value string) error {
	b, err := newFileBackend(configFilePath())
	if err != nil {
		return err
	}
	return setKey(b, secretStore{}, key, value)
}

type secretWriter interface {
	Set(service, account, value string) error
}

type secretStore struct{}

func (secretStore) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

func setKey(b ConfigBackend, sw secretWriter, key, value string) error {
	s, ok := lookup(key)
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}
	if s.secret {
		return sw.Set(secretService, s.account(), value)
	}
	v, err := s.parse(value)
	if err != nil {
		return err
	}
	if i, ok := v.(int); ok {
		return b.SetInt(key, i)
	}
	return b.SetString(key, value)
}

// UnsetKey removes a non-secret key from the config file so its default applies.
func UnsetKey(key string) error {
	s, ok := lookup(key)
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}
	if s.secret {
		return fmt.Errorf("cannot unset secret %q; remove it from the secret store or clear %s", key, s.env)
	}
	b, err := newFileBackend(configFilePath())
	if err != nil {
		return err
	}
	return b.Delete(key)
}

// ValidKeys returns the names of all config keys.
func ValidKeys() []string {
	keys := make([]string, len(specs))
	for i, s := range specs {
		keys[i] = s.key
	}
	return keys
}
