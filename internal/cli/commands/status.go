package commands

import (
	"MediaKeeper/internal/config"
	"context"
	"errors"
	"fmt"

	fsrepo "MediaKeeper/internal/cli/repo/fs"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show current login and vault state" }
func (statusCmd) Usage() string       { return "status" }

// Run показывает локальное состояние CLI: кто залогинен и жив ли
// сохранённый vault-токен. На сервер не ходим.
func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	store := fsrepo.AuthFSStore{}

	login, err := store.LoadLogin()
	if err != nil {
		fmt.Fprintln(Out, "Not logged in")
		return nil
	}
	fmt.Fprintf(Out, "Logged in as: %s\n", login)

	if _, err := store.LoadVaultToken(); err != nil {
		if errors.Is(err, fsrepo.ErrVaultTokenExpired) {
			fmt.Fprintln(Out, "Vault: token expired, run unlock")
		} else {
			fmt.Fprintln(Out, "Vault: locked")
		}
		return nil
	}
	fmt.Fprintln(Out, "Vault: unlocked")
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
