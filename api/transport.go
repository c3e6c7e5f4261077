package api

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/omniscale/osmapi/convert"
	"github.com/pkg/errors"
)

// Request describes a single API call. Path is relative to the API root,
// e.g. /0.6/node/42.
type Request struct {
	Method string
	Path   string
	// Body is nil, a string, a []byte or a convert.Object (sent as XML).
	Body  interface{}
	Query url.Values
}

func (r Request) pathWithQuery() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	sep := "?"
	if strings.Contains(r.Path, "?") {
		sep = "&"
	}
	return r.Path + sep + r.Query.Encode()
}

// Result is the converted response of a request. StatusCode is 0 if no
// response was received.
type Result struct {
	StatusCode int
	Object     convert.Object
}

// Transport sends requests and converts the responses. Send returns the
// status code in Result also when it returns an error.
type Transport interface {
	Send(ctx context.Context, req Request) (Result, error)
}

var errNoResponse = errors.New("oauth handle returned no response")

// OAuthRequest is passed to an OAuthHandle. Path already includes the
// /api prefix.
type OAuthRequest struct {
	Method  string
	Path    string
	Body    []byte
	Headers http.Header
}

// OAuthHandle is an externally configured transport that signs requests.
// The returned response is owned by the caller. Errors are returned to the
// caller of the Client unchanged.
type OAuthHandle interface {
	Xhr(ctx context.Context, req OAuthRequest) (*http.Response, error)
}

func encodeBody(body interface{}) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(b), "text/plain; charset=utf-8", nil
	case []byte:
		return b, "text/xml; charset=utf-8", nil
	case convert.Object:
		data, err := convert.ObjectToXML(b)
		if err != nil {
			return nil, "", err
		}
		return data, "text/xml; charset=utf-8", nil
	default:
		return nil, "", errors.Errorf("unsupported request body %T", body)
	}
}

func checkStatus(method, reqURL string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		Method:     method,
		URL:        reqURL,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// basicTransport talks to the API directly. If authorization is set, its
// value is sent as Authorization header.
type basicTransport struct {
	baseURL       string
	client        *http.Client
	userAgent     string
	authorization func() string
}

func (t *basicTransport) Send(ctx context.Context, r Request) (Result, error) {
	body, contentType, err := encodeBody(r.Body)
	if err != nil {
		return Result{}, err
	}
	reqURL := t.baseURL + r.pathWithQuery()
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, reqURL, reader)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", t.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if t.authorization != nil {
		req.Header.Set("Authorization", t.authorization())
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	log.Debugf("%s %s: %s in %s", r.Method, reqURL, resp.Status, time.Since(start))
	result := Result{StatusCode: resp.StatusCode}
	if err := checkStatus(r.Method, reqURL, resp); err != nil {
		return result, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}
	result.Object, err = convert.XMLToObject(data)
	return result, err
}

// oauthTransport sends all requests through an OAuthHandle.
type oauthTransport struct {
	handle OAuthHandle
}

func (t *oauthTransport) Send(ctx context.Context, r Request) (Result, error) {
	body, contentType, err := encodeBody(r.Body)
	if err != nil {
		return Result{}, err
	}
	req := OAuthRequest{
		Method:  r.Method,
		Path:    "/api" + r.pathWithQuery(),
		Body:    body,
		Headers: http.Header{},
	}
	if contentType != "" {
		req.Headers.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := t.handle.Xhr(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if resp == nil {
		return Result{}, errNoResponse
	}
	log.Debugf("oauth %s %s: %s in %s", r.Method, req.Path, resp.Status, time.Since(start))
	result := Result{StatusCode: resp.StatusCode}
	if err := checkStatus(r.Method, req.Path, resp); err != nil {
		return result, err
	}
	result.Object, err = convert.DOMToObject(resp)
	return result, err
}
