package commands

import (
	"MediaKeeper/internal/config"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"MediaKeeper/internal/cli/api"
	fsrepo "MediaKeeper/internal/cli/repo/fs"
)

func requireAuth() (string, error) {
	token, err := (fsrepo.AuthFSStore{}).Load()
	if err != nil {
		return "", errors.New("not logged in, run login first")
	}
	return token, nil
}

// --- upload ---

type uploadCmd struct{}

func (uploadCmd) Name() string        { return "upload" }
func (uploadCmd) Description() string { return "Upload a media file" }
func (uploadCmd) Usage() string       { return "upload [--encrypt] [--category <c>] <path>" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(Out)
	encrypt := fs.Bool("encrypt", false, "encrypt content with the vault key")
	category := fs.String("category", "", "logical category (photos, docs, ...)")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		return ErrUsage
	}
	path := fs.Arg(0)

	token, err := requireAuth()
	if err != nil {
		return err
	}
	vaultToken := ""
	if *encrypt {
		vaultToken, err = (fsrepo.AuthFSStore{}).LoadVaultToken()
		if err != nil {
			return errors.New("vault is locked, run unlock first")
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fields := map[string]string{"category": *category}
	if *encrypt {
		fields["encrypt"] = "true"
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/media"
	resp, body, err := api.PostMultipart(ctx, endpoint, fields, filepath.Base(path), content, token, vaultToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}

	var ur struct {
		Results []struct {
			ID        string `json:"id"`
			Duplicate bool   `json:"duplicate"`
			Encrypted bool   `json:"encrypted"`
			Error     string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &ur); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if len(ur.Results) == 0 {
		return errors.New("empty server response")
	}
	res := ur.Results[0]
	if res.Error != "" {
		return errors.New(res.Error)
	}
	if res.Duplicate {
		fmt.Fprintf(Out, "Already stored: %s\n", res.ID)
	} else {
		fmt.Fprintf(Out, "Uploaded: %s (encrypted=%v)\n", res.ID, res.Encrypted)
	}
	return nil
}

// --- list ---

type listCmd struct{}

func (listCmd) Name() string        { return "list" }
func (listCmd) Description() string { return "List stored media objects" }
func (listCmd) Usage() string       { return "list" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	token, err := requireAuth()
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/media"
	resp, body, err := api.Get(ctx, endpoint, token, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}

	var lr struct {
		Items []struct {
			ID        string `json:"id"`
			FileName  string `json:"file_name"`
			Category  string `json:"category"`
			Size      int64  `json:"size"`
			Encrypted bool   `json:"encrypted"`
			CreatedAt string `json:"created_at"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &lr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if len(lr.Items) == 0 {
		fmt.Fprintln(Out, "No objects")
		return nil
	}
	for _, it := range lr.Items {
		mark := " "
		if it.Encrypted {
			mark = "*"
		}
		fmt.Fprintf(Out, "%s %s  %8d  %-10s %s\n", mark, it.ID, it.Size, it.Category, it.FileName)
	}
	return nil
}

// --- get ---

type getCmd struct{}

func (getCmd) Name() string        { return "get" }
func (getCmd) Description() string { return "Download object content" }
func (getCmd) Usage() string       { return "get [--decrypt] [--out <path>] <id>" }

func (getCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(Out)
	decrypt := fs.Bool("decrypt", false, "decrypt the content server-side")
	out := fs.String("out", "", "write content to file instead of stdout")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		return ErrUsage
	}
	id := fs.Arg(0)

	token, err := requireAuth()
	if err != nil {
		return err
	}
	vaultToken := ""
	if *decrypt {
		vaultToken, err = (fsrepo.AuthFSStore{}).LoadVaultToken()
		if err != nil {
			return errors.New("vault is locked, run unlock first")
		}
	}

	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/media/" + id + "/content"
	if *decrypt {
		endpoint += "?decrypt=true"
	}
	resp, body, err := api.Get(ctx, endpoint, token, vaultToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return errors.New("content is encrypted, pass --decrypt")
	case http.StatusUnauthorized:
		return errors.New("vault token rejected, run unlock again")
	case http.StatusForbidden:
		return errors.New("access denied")
	case http.StatusNotFound:
		return errors.New("object not found")
	default:
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}

	if *out != "" {
		if err := os.WriteFile(*out, body, 0o600); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Saved %d bytes to %s\n", len(body), *out)
		return nil
	}
	ct := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err == nil && !strings.HasPrefix(mt, "text/") && mt != "application/json" {
		fmt.Fprintf(Out, "Binary content (%s, %d bytes), use --out <path>\n", mt, len(body))
		return nil
	}
	_, _ = Out.Write(body)
	return nil
}

// --- rm ---

type rmCmd struct{}

func (rmCmd) Name() string        { return "rm" }
func (rmCmd) Description() string { return "Delete a media object" }
func (rmCmd) Usage() string       { return "rm <id>" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	token, err := requireAuth()
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/media/" + args[0]
	resp, body, err := api.Delete(ctx, endpoint, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNoContent:
		fmt.Fprintln(Out, "Deleted")
		return nil
	case http.StatusNotFound:
		return errors.New("object not found")
	}
	return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
}

func init() {
	RegisterCmd(uploadCmd{})
	RegisterCmd(listCmd{})
	RegisterCmd(getCmd{})
	RegisterCmd(rmCmd{})
}
