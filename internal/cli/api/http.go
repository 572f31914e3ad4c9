package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	fsrepo "MediaKeeper/internal/cli/repo/fs"
)

// setAuth навешивает auth-cookie и, если задан, vault-токен.
// Vault-токен идёт только в заголовок Authorization, в URL ему не место.
func setAuth(req *http.Request, authToken, vaultToken string) {
	if authToken != "" {
		req.Header.Set("Cookie", "auth_token="+authToken)
	}
	if vaultToken != "" {
		req.Header.Set("Authorization", "vault:"+vaultToken)
	}
}

// PostJSON отправляет JSON POST-запрос.
func PostJSON(ctx context.Context, url string, payload any, authToken, vaultToken string) (*http.Response, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req, authToken, vaultToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body, nil
}

// Get выполняет GET-запрос и возвращает тело целиком.
func Get(ctx context.Context, url string, authToken, vaultToken string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	setAuth(req, authToken, vaultToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body, nil
}

// Delete выполняет DELETE-запрос.
func Delete(ctx context.Context, url string, authToken string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, nil, err
	}
	setAuth(req, authToken, "")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body, nil
}

// PostMultipart загружает один файл multipart-формой с дополнительными полями.
func PostMultipart(ctx context.Context, url string, fields map[string]string, fileName string, content []byte, authToken, vaultToken string) (*http.Response, []byte, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, nil, err
	}
	if _, err := fw.Write(content); err != nil {
		return nil, nil, err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setAuth(req, authToken, vaultToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, body, nil
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его через файловое хранилище.
func PersistAuthFromResponse(resp *http.Response) error {
	store := fsrepo.AuthFSStore{}
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}
