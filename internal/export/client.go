package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Client implements Backend over the service's HTTP API. AuthToken is sent
// as a Bearer token on the /api routes; /generatePdf needs none.
type Client struct {
	BaseURL   string
	AuthToken string
	OutDir    string

	HTTPClient *http.Client
}

func NewClient(baseURL, authToken, outDir string) *Client {
	return &Client{
		BaseURL:    baseURL,
		AuthToken:  authToken,
		OutDir:     outDir,
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if jerr := json.NewDecoder(resp.Body).Decode(&apiErr); jerr == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Message)
			}
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) PageCount(ctx context.Context) (int, error) {
	var resp struct {
		Pages []json.RawMessage `json:"pages"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/scrapbook", &resp); err != nil {
		return 0, err
	}
	return len(resp.Pages), nil
}

func (c *Client) MintToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/pdf-previews", &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) GeneratePDF(ctx context.Context, token string) (string, string, error) {
	var resp struct {
		Success     bool   `json:"success"`
		DownloadURL string `json:"downloadUrl"`
		FileName    string `json:"fileName"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/generatePdf?token="+token, &resp); err != nil {
		return "", "", err
	}
	return resp.DownloadURL, resp.FileName, nil
}

// Download streams the signed URL to OutDir/fileName.
func (c *Client) Download(ctx context.Context, url, fileName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	path := filepath.Join(c.OutDir, fileName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
