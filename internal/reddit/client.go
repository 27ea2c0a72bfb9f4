// Package reddit is a small client for reddit's OAuth API, it covers
// exactly what the bot needs: reading new posts, reading and answering the
// inbox and submitting self posts.
package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_login     = "client.login"
	report_client_me        = "client.me"
	report_client_new       = "client.new"
	report_client_unread    = "client.unread"
	report_client_reply     = "client.reply"
	report_client_mark_read = "client.mark-read"
	report_client_submit    = "client.submit"
)

const (
	DefaultAuthURL = "https://www.reddit.com"
	DefaultAPIURL  = "https://oauth.reddit.com"

	// unread listings are paginated, this bounds how many pages a single
	// call will walk when asked for everything.
	maxUnreadPages = 10
	pageSize       = 100
)

type Options struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	ProxyServer  string

	// AuthURL and APIURL default to reddit's production hosts.
	AuthURL string
	APIURL  string
	Timeout time.Duration
	// RequestsPerSecond defaults to 1.
	RequestsPerSecond float64
}

type Client struct {
	http    *resty.Client
	opts    Options
	tel     telemetry.API
	limiter *rate.Limiter

	mutex     sync.Mutex
	token     string
	expiresAt time.Time
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("reddit", tel)

	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 1
	}
	for _, u := range []string{opts.AuthURL, opts.APIURL} {
		_, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimSuffix(opts.APIURL, "/"))
	httpClient.SetHeader("User-Agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)
	if opts.ProxyServer != "" {
		httpClient.SetProxy(opts.ProxyServer)
	}

	c := &Client{
		http:    httpClient,
		opts:    opts,
		tel:     tel,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.limiter.Wait(req.Context())
	})
	telemetry.InstrumentResty(httpClient, "reddit/http", tel)

	return c, nil
}

// Login performs the password grant and keeps the bearer token for
// subsequent calls.
func (c *Client) Login(ctx context.Context) error {
	var token tokenResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.opts.ClientID, c.opts.ClientSecret).
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   c.opts.Username,
			"password":   c.opts.Password,
		}).
		SetResult(&token).
		Post(strings.TrimSuffix(c.opts.AuthURL, "/") + "/api/v1/access_token")
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("token request: %w", err))
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if res.StatusCode() == 401 {
		c.tel.ReportWarning(report_client_login, "bad client credentials")
		return fmt.Errorf("%w: invalid client id or secret", ErrLoginFailed)
	}
	if res.IsError() {
		return statusError(res)
	}
	if token.Error != "" {
		c.tel.ReportWarning(report_client_login, token.Error)
		return fmt.Errorf("%w: %s", ErrLoginFailed, token.Error)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", ErrLoginFailed)
	}

	c.mutex.Lock()
	c.token = token.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	c.mutex.Unlock()

	c.tel.ReportDebug("logged in", c.opts.Username, token.Scope)
	return nil
}

// request returns an authorized request, logging in again when the token
// is missing or about to expire.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	c.mutex.Lock()
	expired := c.token == "" || time.Now().Add(time.Minute).After(c.expiresAt)
	c.mutex.Unlock()

	if expired {
		err := c.Login(ctx)
		if err != nil {
			return nil, err
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.http.R().
		SetContext(ctx).
		SetAuthScheme("bearer").
		SetAuthToken(c.token), nil
}

func statusError(res *resty.Response) error {
	return &StatusError{
		Method: res.Request.Method,
		URL:    res.Request.URL,
		Status: res.StatusCode(),
		Body:   res.String(),
	}
}

// Me returns the name of the authenticated account.
func (c *Client) Me(ctx context.Context) (string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return "", err
	}
	var me meResponse
	res, err := req.SetResult(&me).Get("/api/v1/me")
	if err != nil {
		c.tel.ReportBroken(report_client_me, err)
		return "", err
	}
	if res.IsError() {
		return "", statusError(res)
	}
	return me.Name, nil
}

// New lists the newest submissions of a subreddit.
func (c *Client) New(ctx context.Context, subreddit string, limit int) ([]Submission, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var out listing[Submission]
	res, err := req.
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("raw_json", "1").
		SetPathParam("subreddit", subreddit).
		SetResult(&out).
		Get("/r/{subreddit}/new")
	if err != nil {
		c.tel.ReportBroken(report_client_new, err, subreddit)
		return nil, err
	}
	if res.IsError() {
		return nil, statusError(res)
	}
	return out.items(), nil
}

// Unread lists unread inbox messages, limit <= 0 walks every page.
func (c *Client) Unread(ctx context.Context, limit int) ([]Message, error) {
	var messages []Message
	after := ""
	for page := 0; page < maxUnreadPages; page++ {
		size := pageSize
		if limit > 0 && limit-len(messages) < size {
			size = limit - len(messages)
		}

		req, err := c.request(ctx)
		if err != nil {
			return nil, err
		}
		var out listing[Message]
		req = req.
			SetQueryParam("limit", strconv.Itoa(size)).
			SetQueryParam("raw_json", "1").
			SetResult(&out)
		if after != "" {
			req = req.SetQueryParam("after", after)
		}
		res, err := req.Get("/message/unread")
		if err != nil {
			c.tel.ReportBroken(report_client_unread, err)
			return nil, err
		}
		if res.IsError() {
			return nil, statusError(res)
		}

		messages = append(messages, out.items()...)
		after = out.Data.After
		if after == "" || (limit > 0 && len(messages) >= limit) {
			return messages, nil
		}
	}
	c.tel.ReportWarning(report_client_unread, "page cap reached", len(messages))
	return messages, nil
}

func (c *Client) postForm(ctx context.Context, reportId, endpoint string, form map[string]string) (apiResponse, error) {
	req, err := c.request(ctx)
	if err != nil {
		return apiResponse{}, err
	}
	var out apiResponse
	res, err := req.
		SetFormData(form).
		SetResult(&out).
		Post(endpoint)
	if err != nil {
		c.tel.ReportBroken(reportId, err)
		return apiResponse{}, err
	}
	if res.IsError() {
		return apiResponse{}, statusError(res)
	}
	err = apiErrorFrom(out.JSON.Errors)
	if err != nil {
		c.tel.ReportWarning(reportId, err)
		return apiResponse{}, err
	}
	return out, nil
}

// Reply answers a message or comment identified by its fullname (t1_/t4_).
func (c *Client) Reply(ctx context.Context, fullname, text string) error {
	_, err := c.postForm(ctx, report_client_reply, "/api/comment", map[string]string{
		"api_type": "json",
		"thing_id": fullname,
		"text":     text,
	})
	return err
}

// MarkRead marks inbox items as read.
func (c *Client) MarkRead(ctx context.Context, fullnames ...string) error {
	if len(fullnames) == 0 {
		return nil
	}
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	res, err := req.
		SetFormData(map[string]string{"id": strings.Join(fullnames, ",")}).
		Post("/api/read_message")
	if err != nil {
		c.tel.ReportBroken(report_client_mark_read, err)
		return err
	}
	if res.IsError() {
		return statusError(res)
	}
	return nil
}

// Submit creates a self post and returns it with its URL filled in.
func (c *Client) Submit(ctx context.Context, subreddit, title, body string) (Submission, error) {
	out, err := c.postForm(ctx, report_client_submit, "/api/submit", map[string]string{
		"api_type": "json",
		"kind":     "self",
		"sr":       subreddit,
		"title":    title,
		"text":     body,
	})
	if err != nil {
		return Submission{}, err
	}
	return Submission{
		ID:        out.JSON.Data.ID,
		Name:      out.JSON.Data.Name,
		Subreddit: subreddit,
		Title:     title,
		Selftext:  body,
		URL:       out.JSON.Data.URL,
	}, nil
}
