package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/instrumentation"
)

// GetRequest issues a GET for the descriptor
func (c *Client) GetRequest(ctx context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return c.do(ctx, http.MethodGet, d)
}

// PostRequest issues a POST for the descriptor
func (c *Client) PostRequest(ctx context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return c.do(ctx, http.MethodPost, d)
}

// PutRequest issues a PUT for the descriptor
func (c *Client) PutRequest(ctx context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return c.do(ctx, http.MethodPut, d)
}

// PatchRequest issues a PATCH for the descriptor
func (c *Client) PatchRequest(ctx context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return c.do(ctx, http.MethodPatch, d)
}

// DeleteRequest issues a DELETE for the descriptor
func (c *Client) DeleteRequest(ctx context.Context, d endpoint.Descriptor) (endpoint.Result, error) {
	return c.do(ctx, http.MethodDelete, d)
}

func (c *Client) do(ctx context.Context, method string, d endpoint.Descriptor) (endpoint.Result, error) {
	var result endpoint.Result
	err := c.observe(ctx, method, instrumentation.DriveResource(d.Path), func(ctx context.Context) (int, error) {
		var code int
		var err error
		result, code, err = c.send(ctx, method, d)
		return code, err
	})
	if err != nil {
		return nil, fmt.Errorf("drive %s %s: %w", method, d.Path, err)
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, method string, d endpoint.Descriptor) (endpoint.Result, int, error) {
	u, err := c.buildURL(d.Path, d.Params)
	if err != nil {
		return nil, 0, err
	}

	var body io.Reader
	if hasContent(method) {
		data, err := json.Marshal(content(d))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, c.checkTransportError(err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, resp.StatusCode, c.classify(err)
	}

	result, err := decodeResult(resp.Body)
	return result, resp.StatusCode, err
}

// hasContent reports whether requests with method carry a JSON payload
func hasContent(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// content returns the request payload: the body, else the params, else an
// empty object
func content(d endpoint.Descriptor) any {
	if d.Body != nil {
		return d.Body
	}
	if d.Params != nil {
		return d.Params
	}
	return map[string]any{}
}

// buildURL resolves path against the base URL. Absolute https:// paths are
// used as they are.
func (c *Client) buildURL(path string, params endpoint.Params) (string, error) {
	var raw string
	switch {
	case strings.HasPrefix(path, "https://"):
		raw = path
	case path == "":
		raw = c.baseURL
	case strings.HasPrefix(path, "/"):
		raw = c.baseURL + path
	default:
		raw = c.baseURL + "/" + path
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for key, value := range params {
			addParam(q, key, value)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// addParam adds value under key; slices become repeated keys and nil values
// are skipped
func addParam(q url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
	case []any:
		for _, item := range v {
			addParam(q, key, item)
		}
	case []string:
		for _, item := range v {
			q.Add(key, item)
		}
	default:
		q.Add(key, formatParam(v))
	}
}

func formatParam(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// decodeResult decodes a JSON object response. Empty bodies yield an empty
// result; non-object JSON values are returned under "value".
func decodeResult(r io.Reader) (endpoint.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return endpoint.Result{}, nil
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if m, ok := v.(map[string]any); ok {
		return endpoint.Result(m), nil
	}
	return endpoint.Result{"value": v}, nil
}
