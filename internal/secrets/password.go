package secrets

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"

	"jobpost-engine/internal/config"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "jobpost"

// LogStorePassword resolves the Basic-auth password for the log store.
// The keychain wins; the config file value is the fallback for headless
// environments without a keyring daemon.
func LogStorePassword(cfg config.Config) (string, error) {
	account := LogStoreKeyringAccount(cfg)
	if account != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if strings.TrimSpace(cfg.LogStore.Password) != "" {
		return cfg.LogStore.Password, nil
	}
	return "", errors.New("log store password not found (set it in the keychain or in config)")
}

func SetLogStorePassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeleteLogStorePassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

func LogStoreKeyringAccount(cfg config.Config) string {
	host := ""
	if u, err := url.Parse(cfg.LogStore.URL); err == nil {
		host = u.Host
	}
	if strings.TrimSpace(cfg.LogStore.Username) == "" || host == "" {
		return ""
	}
	return fmt.Sprintf("jobpost:logstore:%s@%s", cfg.LogStore.Username, host)
}
