package browser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"redditbot/internal/components/assert"
	"redditbot/internal/components/telemetry"
	"redditbot/internal/post"
	"redditbot/internal/publish"
)

var (
	ErrTitleNotFound  = errors.New("title field not found")
	ErrSubmitNotFound = errors.New("submit button not found")
)

const (
	report_flow_navigate = "flow.navigate"
	report_flow_blocked  = "flow.blocked"
	report_flow_login    = "flow.login"
	report_flow_title    = "flow.title"
	report_flow_body     = "flow.body"
	report_flow_submit   = "flow.submit"
	report_flow_verify   = "flow.verify"
)

const (
	navigateTimeout    = 60 * time.Second
	blockedWait        = 60 * time.Second
	loginFormTimeout   = 5 * time.Second
	loginLandTimeout   = 15 * time.Second
	titleTimeout       = 2 * time.Second
	markdownTimeout    = 3 * time.Second
	textareaTimeout    = 1 * time.Second
	richTextTimeout    = 2 * time.Second
	submitTimeout      = 2 * time.Second
	verifyTimeout      = 30 * time.Second
	homeSettle         = 2 * time.Second
	loginSettle        = 3 * time.Second
	submitPageSettle   = 5 * time.Second
	markdownSettle     = 1 * time.Second
	richTextSettle     = 500 * time.Millisecond
	verifySettle       = 3 * time.Second
	logInButtonTimeout = 2 * time.Second
)

const (
	newLoginUser     = "input[name='username']"
	newLoginPassword = "input[name='password']"
	oldLoginUser     = "input[name='user']"
	oldLoginPassword = "input[name='passwd']"
	oldLoginSubmit   = "#login-form button[type='submit']"
	logInButton      = "button:has-text('Log In')"
	markdownButton   = "button:has-text('Markdown')"
)

var loggedInSelectors = []string{
	"form.logout",
	"#USER_DROPDOWN_ID",
	"#email-verification-tooltip-id",
	"button[id*='UserDropdown']",
}

var titleSelectors = []string{
	"textarea[name='title']",
	"input[name='title']",
	"#post-title",
}

var textareaSelectors = []string{
	"textarea[name='text']",
	"textarea[placeholder='Text (optional)']",
	"#post-text",
	"textarea[data-testid='post-body-textarea']",
}

var richTextSelectors = []string{
	"div[role='textbox']",
	"div.public-DraftEditor-content",
	"div[contenteditable='true']",
	"div[data-testid='post-body-content']",
}

var submitSelectors = []string{
	"button:has-text('Post')",
	"button:has-text('Submit')",
	"button:has-text('发帖')",
	"button:has-text('发布')",
	"button[type='submit']",
	"#submit-button",
	"shreddit-post-button button",
}

var (
	postURL    = regexp.MustCompile(`.*/comments/.*`)
	landingURL = regexp.MustCompile(`^https?://[^/]+/?(\?.*)?$`)
)

const DefaultBaseURL = "https://www.reddit.com"

// Flow is the sequence of UI steps that publishes one post.
type Flow struct {
	page     Page
	baseURL  string
	username string
	password string
	tel      telemetry.API
}

func NewFlow(page Page, baseURL, username, password string, tel telemetry.API) Flow {
	assert.NotNil(page)
	assert.NotNil(tel)
	assert.NotEmptyStr(username)
	assert.NotEmptyStr(password)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Flow{
		page:     page,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		tel:      telemetry.NewScopedAPI("browser", tel),
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func (f Flow) bodyText() string {
	text, err := f.page.BodyText()
	if err != nil {
		f.tel.ReportDebug("could not read page body", err)
		return ""
	}
	return text
}

func (f Flow) loginFormVisible() bool {
	return f.page.Visible(newLoginUser) || f.page.Visible(oldLoginUser)
}

func (f Flow) loggedIn(body string) bool {
	if f.loginFormVisible() {
		return false
	}
	for _, selector := range loggedInSelectors {
		if f.page.Visible(selector) {
			return true
		}
	}
	lower := strings.ToLower(body)
	return strings.Contains(lower, "welcome back") || strings.Contains(body, "欢迎回来")
}

// login fills whichever login form the site serves, failures are only
// reported since a human may finish the login in a headful browser.
func (f Flow) login() {
	f.tel.ReportDebug("logging in", f.username)

	err := f.page.Goto(f.baseURL+"/login", navigateTimeout)
	if err != nil {
		f.tel.ReportWarning(report_flow_navigate, err, "login")
	}
	err = f.page.WaitForNetworkIdle(navigateTimeout)
	if err != nil {
		f.tel.ReportDebug("login page never went idle", err)
	}

	err = f.fillLogin()
	if err != nil {
		f.tel.ReportWarning(report_flow_login, err, truncate(f.bodyText(), 500))
	}

	err = f.page.WaitForURL(landingURL, loginLandTimeout)
	if err != nil {
		f.tel.ReportWarning(report_flow_login, "login did not land on the home page, a captcha or 2FA may need a human")
	}
}

func (f Flow) fillLogin() error {
	user, err := f.page.Find(newLoginUser, loginFormTimeout)
	if err == nil {
		err = user.Fill(f.username)
		if err != nil {
			return fmt.Errorf("fill username: %w", err)
		}
		password, err := f.page.Find(newLoginPassword, loginFormTimeout)
		if err != nil {
			return fmt.Errorf("find password: %w", err)
		}
		err = password.Fill(f.password)
		if err != nil {
			return fmt.Errorf("fill password: %w", err)
		}
		err = f.page.Press("Enter")
		if err != nil {
			return fmt.Errorf("press enter: %w", err)
		}
		button, err := f.page.Find(logInButton, logInButtonTimeout)
		if err == nil {
			_ = button.Click(logInButtonTimeout)
		}
		return nil
	}

	user, err = f.page.Find(oldLoginUser, loginFormTimeout)
	if err != nil {
		return errors.New("unknown login page structure")
	}
	err = user.Fill(f.username)
	if err != nil {
		return fmt.Errorf("fill user: %w", err)
	}
	password, err := f.page.Find(oldLoginPassword, loginFormTimeout)
	if err != nil {
		return fmt.Errorf("find passwd: %w", err)
	}
	err = password.Fill(f.password)
	if err != nil {
		return fmt.Errorf("fill passwd: %w", err)
	}
	submit, err := f.page.Find(oldLoginSubmit, loginFormTimeout)
	if err != nil {
		return fmt.Errorf("find login submit: %w", err)
	}
	return submit.Click(loginFormTimeout)
}

func (f Flow) home() {
	err := f.page.Goto(f.baseURL+"/", navigateTimeout)
	if err != nil {
		f.tel.ReportWarning(report_flow_navigate, err, "home")
	}
	f.page.Sleep(homeSettle)

	body := f.bodyText()
	if strings.Contains(strings.ToLower(body), "blocked by network security") {
		f.tel.ReportWarning(
			report_flow_blocked,
			fmt.Sprintf("blocked by the site, waiting %s for a human to solve it in the browser", blockedWait),
		)
		f.page.Sleep(blockedWait)
		body = f.bodyText()
	}

	if f.loggedIn(body) {
		f.tel.ReportDebug("already logged in")
	} else {
		f.login()
	}
	f.page.Sleep(loginSettle)
}

func (f Flow) submitPage(subreddit string) {
	submitURL := fmt.Sprintf("%s/r/%s/submit", f.baseURL, subreddit)
	err := f.page.Goto(submitURL, navigateTimeout)
	if err != nil {
		f.tel.ReportWarning(report_flow_navigate, err, "submit")
	}
	f.page.Sleep(submitPageSettle)

	if !f.loginFormVisible() {
		return
	}
	f.tel.ReportWarning(report_flow_login, "submit page redirected to login")
	f.login()
	f.page.Sleep(submitPageSettle)
	if strings.Contains(f.page.URL(), "submit") {
		return
	}
	err = f.page.Goto(submitURL, navigateTimeout)
	if err != nil {
		f.tel.ReportWarning(report_flow_navigate, err, "submit")
	}
	f.page.Sleep(submitPageSettle)
}

func (f Flow) fillTitle(title string) error {
	for _, selector := range titleSelectors {
		el, err := f.page.Find(selector, titleTimeout)
		if err != nil {
			continue
		}
		err = el.Fill(title)
		if err != nil {
			f.tel.ReportDebug("could not fill title", selector, err)
			continue
		}
		return nil
	}

	inputs, _ := f.page.All("input, textarea")
	for i, input := range inputs {
		name, _ := input.Attr("name")
		placeholder, _ := input.Attr("placeholder")
		f.tel.ReportDebug("input on page", i, name, placeholder)
	}
	f.tel.ReportBroken(report_flow_title, ErrTitleNotFound)
	return ErrTitleNotFound
}

func isTitleField(el Element) bool {
	name, _ := el.Attr("name")
	id, _ := el.Attr("id")
	return name == "title" || id == "post-title"
}

// fillBody tries markdown textareas, then rich text editors, then any
// visible textarea that is not the title.
func (f Flow) fillBody(body string) bool {
	button, err := f.page.Find(markdownButton, markdownTimeout)
	if err == nil {
		err = button.Click(markdownTimeout)
		if err == nil {
			f.page.Sleep(markdownSettle)
		}
	}

	for _, selector := range textareaSelectors {
		el, err := f.page.Find(selector, textareaTimeout)
		if err != nil {
			continue
		}
		if isTitleField(el) {
			f.tel.ReportDebug("skipping body candidate matching the title field", selector)
			continue
		}
		if el.Fill(body) == nil {
			return true
		}
	}

	for _, selector := range richTextSelectors {
		el, err := f.page.Find(selector, richTextTimeout)
		if err != nil {
			continue
		}
		if isTitleField(el) {
			continue
		}
		if el.Click(richTextTimeout) != nil {
			continue
		}
		f.page.Sleep(richTextSettle)
		if f.page.InsertText(body) == nil {
			return true
		}
	}

	textareas, _ := f.page.All("textarea")
	for _, el := range textareas {
		if !el.Visible() {
			continue
		}
		name, _ := el.Attr("name")
		if name == "title" {
			continue
		}
		if el.Fill(body) == nil {
			return true
		}
	}
	return false
}

func (f Flow) submit() error {
	for _, selector := range submitSelectors {
		button, err := f.page.Find(selector, submitTimeout)
		if err != nil {
			continue
		}
		disabled, err := button.Disabled()
		if err == nil && disabled {
			f.tel.ReportWarning(report_flow_submit, "submit button disabled, the form may be incomplete", selector)
			continue
		}
		err = button.Click(submitTimeout)
		if err != nil {
			f.tel.ReportDebug("could not click submit", selector, err)
			continue
		}
		return nil
	}

	buttons, _ := f.page.All("button")
	for i, button := range buttons {
		text, _ := button.Text()
		text = strings.TrimSpace(text)
		text = truncate(text, 20)
		f.tel.ReportDebug("button on page", i, text)
	}
	f.tel.ReportBroken(report_flow_submit, ErrSubmitNotFound)
	return ErrSubmitNotFound
}

func (f Flow) verify() publish.Status {
	err := f.page.WaitForURL(postURL, verifyTimeout)
	if err == nil {
		return publish.StatusSubmitted
	}

	body := strings.ToLower(f.bodyText())
	switch {
	case strings.Contains(body, "you are doing that too much"):
		f.tel.ReportWarning(report_flow_verify, "rate limited")
		return publish.StatusRateLimited
	case strings.Contains(body, "something went wrong"):
		f.tel.ReportWarning(report_flow_verify, "platform error")
		return publish.StatusPlatformError
	}
	f.tel.ReportWarning(report_flow_verify, "post page never loaded, the post may still exist")
	return publish.StatusUnverified
}

// Run publishes `content` to `subreddit`, the returned status is only
// meaningful when err is nil.
func (f Flow) Run(ctx context.Context, content post.Post, subreddit string) (publish.Status, error) {
	f.home()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.submitPage(subreddit)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	err := f.fillTitle(content.Title)
	if err != nil {
		return "", err
	}
	if !f.fillBody(content.Body) {
		f.tel.ReportWarning(report_flow_body, "body field was not filled")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	err = f.submit()
	if err != nil {
		return "", err
	}
	status := f.verify()
	f.page.Sleep(verifySettle)
	return status, nil
}
