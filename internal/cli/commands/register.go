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

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account and store auth cookie" }
func (registerCmd) Usage() string       { return "register <login> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	login := args[0]
	password := args[1]
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/register"
	resp, body, err := api.PostJSON(ctx, endpoint, credentialsRequest{Login: login, Password: password}, "", "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := api.PersistAuthFromResponse(resp); err != nil {
			return fmt.Errorf("saving auth: %w", err)
		}
		if err := (fsrepo.AuthFSStore{}).SaveLogin(login); err != nil {
			return fmt.Errorf("saving login: %w", err)
		}
		fmt.Fprintln(Out, "Registered successfully")
		return nil
	}
	if resp.StatusCode == http.StatusConflict {
		return errors.New("login already in use")
	}
	return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
}

func init() { RegisterCmd(registerCmd{}) }
