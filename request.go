package oauth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// Request is the normalized view of one inbound transport request. The
// server core never touches the transport directly; the host adapter
// builds a Request from whatever framework it uses.
type Request struct {
	Method     string
	URL        *url.URL
	Body       url.Values // form-decoded body, POST only
	Header     http.Header
	RemoteAddr string
}

// NewRequest builds a Request from pre-parsed transport values. body may
// be nil for GET requests.
func NewRequest(method, rawURL string, body url.Values, header http.Header) (*Request, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrInvalidRequest("malformed request URL")
	}
	if header == nil {
		header = http.Header{}
	}
	return &Request{
		Method: strings.ToUpper(method),
		URL:    parsed,
		Body:   body,
		Header: header,
	}, nil
}

// FromHTTP normalizes a net/http request. The form body is parsed for
// POST requests only.
func FromHTTP(r *http.Request) (*Request, error) {
	var body url.Values
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return nil, ErrInvalidRequest("malformed form body")
		}
		body = r.PostForm
	}
	return &Request{
		Method:     r.Method,
		URL:        r.URL,
		Body:       body,
		Header:     r.Header,
		RemoteAddr: r.RemoteAddr,
	}, nil
}

// Param returns a request parameter, preferring the form body over the
// query string.
func (r *Request) Param(name string) string {
	if r.Body != nil {
		if v := r.Body.Get(name); v != "" {
			return v
		}
	}
	if r.URL != nil {
		return r.URL.Query().Get(name)
	}
	return ""
}

// ClientID returns the client identifier from HTTP Basic credentials or
// the client_id parameter.
func (r *Request) ClientID() string {
	if id, _, ok := r.basicAuth(); ok {
		return id
	}
	return r.Param("client_id")
}

// ClientSecret returns the client secret from HTTP Basic credentials or
// the client_secret parameter.
func (r *Request) ClientSecret() string {
	if _, secret, ok := r.basicAuth(); ok {
		return secret
	}
	return r.Param("client_secret")
}

// UsedBasicAuth reports whether the request carries HTTP Basic client
// credentials.
func (r *Request) UsedBasicAuth() bool {
	_, _, ok := r.basicAuth()
	return ok
}

func (r *Request) basicAuth() (id, secret string, ok bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	id, secret, ok = strings.Cut(string(decoded), ":")
	return id, secret, ok
}

func (r *Request) GrantType() string     { return r.Param("grant_type") }
func (r *Request) ResponseType() string  { return r.Param("response_type") }
func (r *Request) Scope() string         { return r.Param("scope") }
func (r *Request) RedirectURI() string   { return r.Param("redirect_uri") }
func (r *Request) State() string         { return r.Param("state") }
func (r *Request) Code() string          { return r.Param("code") }
func (r *Request) Username() string      { return r.Param("username") }
func (r *Request) Password() string      { return r.Param("password") }
func (r *Request) RefreshToken() string  { return r.Param("refresh_token") }
func (r *Request) Token() string         { return r.Param("token") }
func (r *Request) TokenTypeHint() string { return r.Param("token_type_hint") }

// Response is the terminal value of one lifecycle invocation: status
// code, headers, and serialized body, handed to the transport adapter.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// WriteTo writes the response through a net/http ResponseWriter.
func (resp *Response) WriteTo(w http.ResponseWriter) error {
	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(resp.Status)
	_, err := w.Write(resp.Body)
	return err
}

// newJSONResponse serializes payload as a UTF-8 JSON body with the
// cache-suppressing headers RFC 6749 requires on token responses.
func newJSONResponse(status int, payload any) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		// Payloads are library-defined structs; this cannot fail.
		body = []byte(`{"error":"server_error"}`)
		status = http.StatusInternalServerError
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("Cache-Control", "no-store")
	header.Set("Pragma", "no-cache")
	return &Response{Status: status, Header: header, Body: body}
}

// newRedirectResponse produces a 302 redirect to location.
func newRedirectResponse(location string) *Response {
	header := http.Header{}
	header.Set("Location", location)
	header.Set("Cache-Control", "no-store")
	header.Set("Pragma", "no-cache")
	return &Response{Status: http.StatusFound, Header: header}
}

// ErrorResponse represents an OAuth error response body.
type ErrorResponse struct {
	// Error is the error code
	Error string `json:"error"`

	// ErrorDescription provides additional information
	ErrorDescription string `json:"error_description,omitempty"`

	// ErrorURI points to error documentation
	ErrorURI string `json:"error_uri,omitempty"`
}
