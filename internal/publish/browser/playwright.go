package browser

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Install downloads the playwright driver and chromium.
func Install() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}

type LaunchOptions struct {
	ProfileDir  string
	Headless    bool
	SlowMo      time.Duration
	ProxyServer string
}

// Session is a chromium persistent context and its first tab.
type Session struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwrightPage
}

func Launch(opts LaunchOptions) (*Session, error) {
	profile, err := filepath.Abs(opts.ProfileDir)
	if err != nil {
		return nil, fmt.Errorf("resolve profile dir: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright (run `redditbot install-browser` first): %w", err)
	}

	launch := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Viewport: &playwright.Size{Width: 1280, Height: 720},
		Locale:   playwright.String("en-US"),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	}
	if opts.ProxyServer != "" {
		launch.Proxy = &playwright.Proxy{Server: opts.ProxyServer}
	}

	browserCtx, err := pw.Chromium.LaunchPersistentContext(profile, launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium on %s: %w", profile, err)
	}

	var page playwright.Page
	if pages := browserCtx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = browserCtx.NewPage()
		if err != nil {
			_ = browserCtx.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("open tab: %w", err)
		}
	}

	return &Session{
		pw:      pw,
		context: browserCtx,
		page:    playwrightPage{page: page},
	}, nil
}

func (s *Session) Page() Page {
	return s.page
}

func (s *Session) Close() error {
	return errors.Join(s.context.Close(), s.pw.Stop())
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

type playwrightPage struct {
	page playwright.Page
}

func (p playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   ms(timeout),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (p playwrightPage) URL() string {
	return p.page.URL()
}

func (p playwrightPage) Sleep(d time.Duration) {
	p.page.WaitForTimeout(float64(d.Milliseconds()))
}

func (p playwrightPage) WaitForNetworkIdle(timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: ms(timeout),
	})
}

func (p playwrightPage) WaitForURL(pattern *regexp.Regexp, timeout time.Duration) error {
	return p.page.WaitForURL(pattern, playwright.PageWaitForURLOptions{
		Timeout: ms(timeout),
	})
}

func (p playwrightPage) Find(selector string, timeout time.Duration) (Element, error) {
	loc := p.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	if err != nil {
		return nil, err
	}
	return playwrightElement{loc: loc}, nil
}

func (p playwrightPage) Visible(selector string) bool {
	visible, err := p.page.Locator(selector).First().IsVisible()
	return err == nil && visible
}

func (p playwrightPage) All(selector string) ([]Element, error) {
	locs, err := p.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	out := make([]Element, len(locs))
	for i, loc := range locs {
		out[i] = playwrightElement{loc: loc}
	}
	return out, nil
}

func (p playwrightPage) BodyText() (string, error) {
	return p.page.Locator("body").InnerText()
}

func (p playwrightPage) Press(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p playwrightPage) InsertText(text string) error {
	return p.page.Keyboard().InsertText(text)
}

func (p playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	return err
}

type playwrightElement struct {
	loc playwright.Locator
}

func (e playwrightElement) Fill(value string) error {
	return e.loc.Fill(value)
}

func (e playwrightElement) Click(timeout time.Duration) error {
	return e.loc.Click(playwright.LocatorClickOptions{Timeout: ms(timeout)})
}

func (e playwrightElement) Attr(name string) (string, error) {
	return e.loc.GetAttribute(name)
}

func (e playwrightElement) Disabled() (bool, error) {
	return e.loc.IsDisabled()
}

func (e playwrightElement) Visible() bool {
	visible, err := e.loc.IsVisible()
	return err == nil && visible
}

func (e playwrightElement) Text() (string, error) {
	return e.loc.InnerText()
}
