package commands

import (
	"MediaKeeper/internal/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"MediaKeeper/internal/cli/api"
	fsrepo "MediaKeeper/internal/cli/repo/fs"
)

type passphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

// --- vault-setup ---

type vaultSetupCmd struct{}

func (vaultSetupCmd) Name() string        { return "vault-setup" }
func (vaultSetupCmd) Description() string { return "Configure the encrypted vault (one-time)" }
func (vaultSetupCmd) Usage() string       { return "vault-setup <passphrase>" }

func (vaultSetupCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	token, err := (fsrepo.AuthFSStore{}).Load()
	if err != nil {
		return errors.New("not logged in, run login first")
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/setup"
	resp, body, err := api.PostJSON(ctx, endpoint, passphraseRequest{Passphrase: args[0]}, token, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusCreated:
		fmt.Fprintln(Out, "Vault configured")
		return nil
	case http.StatusConflict:
		return errors.New("vault already configured")
	case http.StatusBadRequest:
		return fmt.Errorf("rejected: %s", strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
}

// --- unlock ---

type unlockCmd struct{}

func (unlockCmd) Name() string        { return "unlock" }
func (unlockCmd) Description() string { return "Unlock the vault and store a session token" }
func (unlockCmd) Usage() string       { return "unlock <passphrase>" }

func (unlockCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	store := fsrepo.AuthFSStore{}
	token, err := store.Load()
	if err != nil {
		return errors.New("not logged in, run login first")
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/unlock"
	resp, body, err := api.PostJSON(ctx, endpoint, passphraseRequest{Passphrase: args[0]}, token, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New("access denied")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}

	var ur struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := json.Unmarshal(body, &ur); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, ur.ExpiresAt)
	if err != nil {
		expiresAt = time.Now().Add(30 * time.Minute)
	}
	if err := store.SaveVaultToken(ur.Token, expiresAt); err != nil {
		return fmt.Errorf("saving vault token: %w", err)
	}
	fmt.Fprintf(Out, "Vault unlocked until %s\n", expiresAt.Local().Format(time.RFC3339))
	return nil
}

// --- lock ---

type lockCmd struct{}

func (lockCmd) Name() string        { return "lock" }
func (lockCmd) Description() string { return "Revoke the vault session token" }
func (lockCmd) Usage() string       { return "lock" }

func (lockCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	store := fsrepo.AuthFSStore{}
	token, err := store.Load()
	if err != nil {
		return errors.New("not logged in, run login first")
	}
	vaultToken, err := store.LoadVaultToken()
	if err != nil {
		// локально токена нет, отзывать нечего
		_ = store.ClearVaultToken()
		fmt.Fprintln(Out, "Vault already locked")
		return nil
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/vault/lock"
	resp, body, err := api.PostJSON(ctx, endpoint, struct{}{}, token, vaultToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}
	if err := store.ClearVaultToken(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Vault locked")
	return nil
}

func init() {
	RegisterCmd(vaultSetupCmd{})
	RegisterCmd(unlockCmd{})
	RegisterCmd(lockCmd{})
}
