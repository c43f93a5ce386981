// Package api is the HTTP gateway to the teams backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/ports"
)

const (
	maxResponseBytes = 1 << 20
	maxImageBytes    = 10 << 20
	imageFormField   = "image"
)

var errImageTooLarge = errors.New("image exceeds 10 MiB")

type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// Tokens supplies the bearer token. Nil or empty means anonymous requests.
	Tokens ports.TokenSource
}

var _ ports.Gateway = Client{}

func (c Client) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	if email == "" || password == "" {
		return domain.LoginResult{}, errors.New("email and password are required")
	}
	return c.authenticate(ctx, "/login", credentialsRequest{Email: email, Password: password})
}

func (c Client) Register(ctx context.Context, req ports.RegisterRequest) (domain.LoginResult, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return domain.LoginResult{}, errors.New("username, email and password are required")
	}
	return c.authenticate(ctx, "/register", credentialsRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
}

func (c Client) authenticate(ctx context.Context, path string, body credentialsRequest) (domain.LoginResult, error) {
	var payload loginPayload
	if err := c.doJSON(ctx, http.MethodPost, path, body, &payload); err != nil {
		var statusErr *domain.StatusError
		if errors.As(err, &statusErr) && statusErr.Status >= 400 && statusErr.Status < 500 {
			return domain.LoginResult{}, &domain.AuthError{Status: statusErr.Status, Message: statusErr.Message}
		}
		return domain.LoginResult{}, fmt.Errorf("request %s: %w", strings.TrimPrefix(path, "/"), err)
	}
	if payload.Token == "" || payload.User.ID <= 0 {
		return domain.LoginResult{}, errors.New("login response missing token or user")
	}

	user := payload.User.toDomain()
	user.Image = c.resolveImage(user.Image)
	return domain.LoginResult{Token: payload.Token, User: user}, nil
}

func (c Client) FetchUser(ctx context.Context, id domain.EntityID) (domain.User, error) {
	var payload userPayload
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/user/%d", id), nil, &payload); err != nil {
		return domain.User{}, &domain.RemoteFetchError{Type: domain.EntityUser, ID: id, Cause: err}
	}

	user := payload.toDomain()
	if user.ID == 0 {
		user.ID = id
	}
	user.Image = c.resolveImage(user.Image)
	return user, nil
}

func (c Client) FetchProject(ctx context.Context, id domain.EntityID) (domain.Project, error) {
	var payload projectPayload
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/project/%d", id), nil, &payload); err != nil {
		return domain.Project{}, &domain.RemoteFetchError{Type: domain.EntityProject, ID: id, Cause: err}
	}

	project := payload.toDomain()
	if project.ID == 0 {
		project.ID = id
	}
	project.Image = c.resolveImage(project.Image)
	return project, nil
}

func (c Client) UpdateUsername(ctx context.Context, id domain.EntityID, name string) error {
	path := fmt.Sprintf("/user/%d/username", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, usernameRequest{Username: name}, nil); err != nil {
		return &domain.RemoteWriteError{Type: domain.EntityUser, ID: id, Field: domain.FieldUsername, Cause: err}
	}
	return nil
}

// UploadImage sends the file behind fileHandle, a local path or file:// URI,
// and returns the absolute URL the backend stored it under.
func (c Client) UploadImage(ctx context.Context, id domain.EntityID, fileHandle string) (string, error) {
	imageURL, err := c.uploadImage(ctx, id, fileHandle)
	if err != nil {
		return "", &domain.RemoteWriteError{Type: domain.EntityUser, ID: id, Field: domain.FieldImage, Cause: err}
	}
	return imageURL, nil
}

func (c Client) uploadImage(ctx context.Context, id domain.EntityID, fileHandle string) (string, error) {
	path, err := localPath(fileHandle)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile(imageFormField, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create image form: %w", err)
	}
	written, err := io.Copy(part, io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if written > maxImageBytes {
		return "", errImageTooLarge
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close image form: %w", err)
	}

	var payload imagePayload
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/user/%d/image", id), &body, form.FormDataContentType(), &payload); err != nil {
		return "", err
	}
	if payload.ImageURL == "" {
		return "", errors.New("upload response missing image url")
	}
	return c.resolveImage(payload.ImageURL), nil
}

func (c Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	endpoint, err := buildAPIURL(c.BaseURL, path)
	if err != nil {
		return err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Tokens != nil {
		if token := c.Tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

// resolveImage turns server-relative image paths into absolute URLs. Empty
// values and anything unparsable are returned unchanged.
func (c Client) resolveImage(image string) string {
	if image == "" {
		return ""
	}
	parsed, err := url.Parse(image)
	if err != nil || parsed.IsAbs() {
		return image
	}
	resolved, err := buildAPIURL(c.BaseURL, image)
	if err != nil {
		return image
	}
	return resolved
}

func decodeStatusError(resp *http.Response) error {
	var payload errorPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return &domain.StatusError{Status: resp.StatusCode}
	}
	// The HTTP status wins over whatever the body claims.
	return &domain.StatusError{Status: resp.StatusCode, Message: payload.Message}
}

func localPath(fileHandle string) (string, error) {
	if fileHandle == "" {
		return "", errors.New("image file is required")
	}
	if !strings.HasPrefix(fileHandle, "file:") {
		return fileHandle, nil
	}

	parsed, err := url.Parse(fileHandle)
	if err != nil {
		return "", fmt.Errorf("parse file handle: %w", err)
	}
	if parsed.Host != "" && parsed.Host != "localhost" {
		return "", fmt.Errorf("file handle on remote host %q", parsed.Host)
	}
	if parsed.Path == "" {
		return "", errors.New("file handle has no path")
	}
	return parsed.Path, nil
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	endpoint, err := parsed.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
