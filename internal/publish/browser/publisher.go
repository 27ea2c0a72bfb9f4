package browser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/telemetry"
	"redditbot/internal/post"
	"redditbot/internal/publish"
)

const (
	report_publisher_launch     = "publisher.launch"
	report_publisher_screenshot = "publisher.screenshot"
	report_publisher_close      = "publisher.close"
)

type Options struct {
	LaunchOptions
	BaseURL       string
	ScreenshotDir string
	Username      string
	Password      string
	// Hold, when set and the browser is headful, is read up to a newline
	// before the browser closes so the result can be inspected.
	Hold io.Reader
}

// Publisher publishes through the web UI.
type Publisher struct {
	opts   Options
	base   telemetry.API
	tel    telemetry.API
	launch func(LaunchOptions) (session, error)
}

type session interface {
	Page() Page
	Close() error
}

func NewPublisher(opts Options, tel telemetry.API) Publisher {
	assert.NotNil(tel)
	return Publisher{
		opts: opts,
		base: tel,
		tel:  telemetry.NewScopedAPI("browser", tel),
		launch: func(o LaunchOptions) (session, error) {
			return Launch(o)
		},
	}
}

func (p Publisher) screenshot(page Page, name string) string {
	err := os.MkdirAll(p.opts.ScreenshotDir, 0777)
	if err != nil {
		p.tel.ReportWarning(report_publisher_screenshot, err)
		return ""
	}
	path := filepath.Join(p.opts.ScreenshotDir, name)
	err = page.Screenshot(path)
	if err != nil {
		p.tel.ReportWarning(report_publisher_screenshot, err, path)
		return ""
	}
	return path
}

func (p Publisher) hold() {
	if p.opts.Headless || p.opts.Hold == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Press Enter to close the browser...")
	_, err := bufio.NewReader(p.opts.Hold).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		p.tel.ReportDebug("hold interrupted", err)
	}
}

func (p Publisher) Publish(ctx context.Context, content post.Post, subreddit string) (publish.Result, error) {
	result := publish.Result{Method: "browser"}

	s, err := p.launch(p.opts.LaunchOptions)
	if err != nil {
		p.tel.ReportBroken(report_publisher_launch, err)
		return result, err
	}
	defer func() {
		err := s.Close()
		if err != nil {
			p.tel.ReportWarning(report_publisher_close, err)
		}
	}()

	page := s.Page()
	flow := NewFlow(page, p.opts.BaseURL, p.opts.Username, p.opts.Password, p.base)
	status, err := flow.Run(ctx, content, subreddit)
	if err != nil {
		result.Screenshot = p.screenshot(page, "error.png")
		p.hold()
		return result, fmt.Errorf("publish to r/%s in browser: %w", subreddit, err)
	}

	result.Status = status
	if status == publish.StatusSubmitted {
		result.URL = page.URL()
	}
	result.Screenshot = p.screenshot(page, "success.png")
	p.hold()
	return result, nil
}
