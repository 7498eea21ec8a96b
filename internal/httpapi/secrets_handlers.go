package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"jobpost-engine/internal/config"
	"jobpost-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

// SetLogStorePassword stores the Basic-auth password in the OS keychain so
// it never has to live in the config file.
func (h SecretsHandler) SetLogStorePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	account := secrets.LogStoreKeyringAccount(cfg)
	if account == "" {
		WriteError(w, r, http.StatusBadRequest, "no_account", "configure logstore.url and logstore.username first")
		return
	}

	if err := secrets.SetLogStorePassword(account, body.Password); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "account": account})
}
