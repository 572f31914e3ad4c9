package commands

import (
	"MediaKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"MediaKeeper/internal/cli/api"
	fsrepo "MediaKeeper/internal/cli/repo/fs"
)

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <login> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	login := args[0]
	password := args[1]
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/login"
	resp, body, err := api.PostJSON(ctx, endpoint, credentialsRequest{Login: login, Password: password}, "", "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := api.PersistAuthFromResponse(resp); err != nil {
			return fmt.Errorf("saving auth: %w", err)
		}
		store := fsrepo.AuthFSStore{}
		if err := store.SaveLogin(login); err != nil {
			return fmt.Errorf("saving login: %w", err)
		}
		// смена пользователя обесценивает старый vault-токен
		_ = store.ClearVaultToken()
		fmt.Fprintln(Out, "Logged in successfully")
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return errors.New("invalid login or password")
	}
	return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
}

func init() { RegisterCmd(loginCmd{}) }
