package browser

import (
	"errors"
	"regexp"
	"time"
)

var errTimeout = errors.New("timeout")

type fakeElement struct {
	attrs    map[string]string
	hidden   bool
	disabled bool
	text     string
	filled   string
	clicks   int
	onClick  func()
}

func (e *fakeElement) Fill(value string) error {
	e.filled = value
	return nil
}

func (e *fakeElement) Click(timeout time.Duration) error {
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) Attr(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Disabled() (bool, error) {
	return e.disabled, nil
}

func (e *fakeElement) Visible() bool {
	return !e.hidden
}

func (e *fakeElement) Text() (string, error) {
	return e.text, nil
}

type fakePage struct {
	url         string
	body        string
	elements    map[string][]*fakeElement
	visits      []string
	sleeps      []time.Duration
	finds       []string
	inserted    string
	pressed     []string
	screenshots []string
	onGoto      func(url string)
	onPress     func(key string)
}

func newFakePage() *fakePage {
	return &fakePage{elements: map[string][]*fakeElement{}}
}

func (p *fakePage) add(selector string, el *fakeElement) *fakeElement {
	p.elements[selector] = append(p.elements[selector], el)
	return el
}

func (p *fakePage) Goto(url string, timeout time.Duration) error {
	p.visits = append(p.visits, url)
	p.url = url
	if p.onGoto != nil {
		p.onGoto(url)
	}
	return nil
}

func (p *fakePage) URL() string {
	return p.url
}

func (p *fakePage) Sleep(d time.Duration) {
	p.sleeps = append(p.sleeps, d)
}

func (p *fakePage) WaitForNetworkIdle(timeout time.Duration) error {
	return nil
}

func (p *fakePage) WaitForURL(pattern *regexp.Regexp, timeout time.Duration) error {
	if pattern.MatchString(p.url) {
		return nil
	}
	return errTimeout
}

func (p *fakePage) first(selector string) *fakeElement {
	els := p.elements[selector]
	if len(els) == 0 || els[0].hidden {
		return nil
	}
	return els[0]
}

func (p *fakePage) Find(selector string, timeout time.Duration) (Element, error) {
	p.finds = append(p.finds, selector)
	el := p.first(selector)
	if el == nil {
		return nil, errTimeout
	}
	return el, nil
}

func (p *fakePage) Visible(selector string) bool {
	return p.first(selector) != nil
}

func (p *fakePage) All(selector string) ([]Element, error) {
	var out []Element
	for _, el := range p.elements[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (p *fakePage) BodyText() (string, error) {
	return p.body, nil
}

func (p *fakePage) Press(key string) error {
	p.pressed = append(p.pressed, key)
	if p.onPress != nil {
		p.onPress(key)
	}
	return nil
}

func (p *fakePage) InsertText(text string) error {
	p.inserted = text
	return nil
}

func (p *fakePage) Screenshot(path string) error {
	p.screenshots = append(p.screenshots, path)
	return nil
}

func (p *fakePage) sleptFor(d time.Duration) bool {
	for _, s := range p.sleeps {
		if s == d {
			return true
		}
	}
	return false
}

type fakeSession struct {
	page   *fakePage
	closed bool
}

func (s *fakeSession) Page() Page {
	return s.page
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}
