package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultRefreshSkew = 30 * time.Second

type HTTPClient struct {
	baseURL     *url.URL
	http        *http.Client
	refreshSkew time.Duration
	now         func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	// refreshMu serialises token refreshes so concurrent calls do not burn
	// the same refresh token twice.
	refreshMu sync.Mutex
}

// NewDocumentsClient builds an HTTPClient for the backend at baseURL
// (e.g. "http://127.0.0.1:8080/api"). timeout bounds every request.
func NewDocumentsClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	return &HTTPClient{
		baseURL:     u,
		http:        &http.Client{Timeout: timeout},
		refreshSkew: defaultRefreshSkew,
		now:         time.Now,
	}, nil
}

func (c *HTTPClient) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *HTTPClient) Tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) endpoint(query url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + "/" + strings.Join(escaped, "/")
	u.Path = c.baseURL.Path + "/" + strings.Join(segments, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

type request struct {
	method      string
	url         string
	body        []byte
	contentType string
	auth        bool
	headers     map[string]string
}

type response struct {
	header http.Header
	body   []byte
}

func jsonRequest(method, url string, payload any) (request, error) {
	r := request{method: method, url: url, auth: true}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("encode request: %w", err)
		}
		r.body = b
		r.contentType = "application/json"
	}
	return r, nil
}

// do sends r. Authenticated requests refresh the access token before the
// call when it is about to expire, and once more after a 401.
func (c *HTTPClient) do(ctx context.Context, r request) (*response, error) {
	if r.auth {
		access, refresh := c.Tokens()
		if refresh != "" && tokenExpiresWithin(access, c.now(), c.refreshSkew) {
			if err := c.refresh(ctx, access); err != nil && !errors.Is(err, ErrUnauthorized) {
				return nil, err
			}
		}
	}

	resp, err := c.send(ctx, r)
	if err == nil || !r.auth {
		return resp, err
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return nil, err
	}
	access, refresh := c.Tokens()
	if refresh == "" {
		return nil, err
	}
	if rerr := c.refresh(ctx, access); rerr != nil {
		return nil, err
	}
	return c.send(ctx, r)
}

func (c *HTTPClient) send(ctx context.Context, r request) (*response, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if r.auth {
		if access, _ := c.Tokens(); access != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(b)}
	}
	return &response{header: resp.Header, body: b}, nil
}

type tokenPair struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
}

// refresh exchanges the refresh token for a new pair. If another goroutine
// already replaced stale, nothing is sent.
func (c *HTTPClient) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.Tokens()
	if access != stale {
		return nil
	}
	if refresh == "" {
		return ErrUnauthorized
	}

	r, err := jsonRequest(http.MethodPost, c.endpoint(nil, "auth", "refresh"), map[string]string{"refreshToken": refresh})
	if err != nil {
		return err
	}
	r.auth = false

	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	pair, err := decodeData[tokenPair](resp.body)
	if err != nil {
		return err
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refresh
	}
	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}

// tokenExpiresWithin reads the exp claim without verifying the signature;
// verification is the backend's job. Tokens without exp never expire here.
func tokenExpiresWithin(token string, now time.Time, skew time.Duration) bool {
	if token == "" {
		return true
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now.Add(skew))
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	r, err := jsonRequest(http.MethodPost, c.endpoint(nil, "auth", "login"), map[string]string{
		"email":    email,
		"password": string(password),
	})
	if err != nil {
		return nil, err
	}
	r.auth = false

	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	pair, err := decodeData[tokenPair](resp.body)
	if err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token in login response", ErrUnauthorized)
	}
	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	return pair.User, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.send(ctx, request{method: http.MethodGet, url: c.endpoint(nil, "health")})
	return err
}

func (c *HTTPClient) ListDocuments(ctx context.Context, f models.DocumentFilter) (models.DocumentPage, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.DepartmentID != "" {
		q.Set("department", f.DepartmentID)
	}
	if f.TagID != "" {
		q.Set("tag", f.TagID)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	resp, err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint(q, "documents"), auth: true})
	if err != nil {
		return models.DocumentPage{}, err
	}
	return decodeData[models.DocumentPage](resp.body)
}

func (c *HTTPClient) GetDocument(ctx context.Context, documentID string) (models.Document, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint(nil, "documents", documentID), auth: true})
	if err != nil {
		return models.Document{}, err
	}
	data, err := decodeData[struct {
		Document models.Document `json:"document"`
	}](resp.body)
	if err != nil {
		return models.Document{}, err
	}
	return data.Document, nil
}

func (c *HTTPClient) ValidateVersion(ctx context.Context, documentID, versionID string) (models.ValidationResult, error) {
	u := c.endpoint(nil, "documents", documentID, "versions", versionID, "validate")
	resp, err := c.do(ctx, request{method: http.MethodGet, url: u, auth: true})
	if err != nil {
		return models.ValidationResult{}, err
	}
	return decodeRoot[models.ValidationResult](resp.body)
}

func (c *HTTPClient) UpdateVersionStatus(ctx context.Context, documentID, versionID string, status models.VersionStatus) error {
	u := c.endpoint(nil, "documents", documentID, "versions", versionID, "status")
	r, err := jsonRequest(http.MethodPut, u, map[string]string{"status": string(status)})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, r)
	return err
}

func (c *HTTPClient) DeleteVersion(ctx context.Context, documentID, versionID string) error {
	u := c.endpoint(nil, "documents", documentID, "versions", versionID)
	_, err := c.do(ctx, request{method: http.MethodDelete, url: u, auth: true})
	return err
}

func (c *HTTPClient) DownloadVersion(ctx context.Context, documentID, versionID string) (Download, error) {
	u := c.endpoint(nil, "documents", documentID, "versions", versionID, "download")
	resp, err := c.do(ctx, request{method: http.MethodGet, url: u, auth: true})
	if err != nil {
		return Download{}, err
	}

	d := Download{Data: resp.body, MimeType: resp.header.Get("Content-Type")}
	if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil {
		d.FileName = params["filename"]
	}
	return d, nil
}

func (c *HTTPClient) UploadVersion(ctx context.Context, req models.UploadRequest) (models.DocumentVersion, error) {
	if req.Content == nil {
		return models.DocumentVersion{}, errors.New("upload request has no content")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if req.Comment != "" {
		if err := w.WriteField("comment", req.Comment); err != nil {
			return models.DocumentVersion{}, err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": req.FileName,
	}))
	contentType := req.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return models.DocumentVersion{}, err
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return models.DocumentVersion{}, fmt.Errorf("read upload content: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.DocumentVersion{}, err
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint(nil, "documents", req.DocumentID, "versions"),
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
		auth:        true,
		headers:     map[string]string{"Idempotency-Key": uuid.NewString()},
	})
	if err != nil {
		return models.DocumentVersion{}, err
	}
	data, err := decodeData[struct {
		Version models.DocumentVersion `json:"version"`
	}](resp.body)
	if err != nil {
		return models.DocumentVersion{}, err
	}
	return data.Version, nil
}

func (c *HTTPClient) ListActiveSignatures(ctx context.Context) ([]models.SignatureStamp, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint(nil, "signatures", "active"), auth: true})
	if err != nil {
		return nil, err
	}
	return decodeData[[]models.SignatureStamp](resp.body)
}

func (c *HTTPClient) ApplySignature(ctx context.Context, req models.ApplySignatureRequest) (models.AppliedSignature, error) {
	r, err := jsonRequest(http.MethodPost, c.endpoint(nil, "signatures", "apply"), req)
	if err != nil {
		return models.AppliedSignature{}, err
	}
	resp, err := c.do(ctx, r)
	if err != nil {
		return models.AppliedSignature{}, err
	}
	return decodeData[models.AppliedSignature](resp.body)
}

func (c *HTTPClient) ListDepartments(ctx context.Context) ([]models.Department, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint(nil, "departments"), auth: true})
	if err != nil {
		return nil, err
	}
	return decodeData[[]models.Department](resp.body)
}

func (c *HTTPClient) ListTags(ctx context.Context) ([]models.Tag, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint(nil, "tags"), auth: true})
	if err != nil {
		return nil, err
	}
	return decodeData[[]models.Tag](resp.body)
}
