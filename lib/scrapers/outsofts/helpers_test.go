package outsofts

import (
	"context"
	"time"
)

// fakeClock advances instantly on Sleep so retry loops run at full speed.
type fakeClock struct {
	now     time.Time
	sleeps  []time.Duration
	onSleep func(d time.Duration)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	if c.onSleep != nil {
		c.onSleep(d)
	}
	return nil
}

// fakeView simulates the rendered order table without a browser.
type fakeView struct {
	html        string
	currentPage int
	// pages with a rendered numbered pagination control
	pageItems map[int]bool
	// whether clicking a rendered page control actually jumps there
	jumpWorks   bool
	nextEnabled bool
	// how many pages a next click advances; a broken pager can skip
	nextStep    int
	noIndicator bool

	clickOutcome ClickOutcome
	clickErr     error
	onClick      func(ref AffordanceRef)
	clicks       []AffordanceRef
	dismissed    int
}

func newFakeView() *fakeView {
	return &fakeView{
		currentPage:  1,
		pageItems:    map[int]bool{},
		jumpWorks:    true,
		nextEnabled:  true,
		nextStep:     1,
		clickOutcome: ClickOutcome{Clicked: true, Text: "查看详情"},
	}
}

func (v *fakeView) HTML(ctx context.Context) (string, error) {
	return v.html, nil
}

func (v *fakeView) ActivePage(ctx context.Context) (int, error) {
	if v.noIndicator {
		return 0, nil
	}
	return v.currentPage, nil
}

func (v *fakeView) ClickPageItem(ctx context.Context, page int) (bool, error) {
	if !v.pageItems[page] {
		return false, nil
	}
	if v.jumpWorks {
		v.currentPage = page
	}
	return true, nil
}

func (v *fakeView) ClickNext(ctx context.Context) (bool, error) {
	if !v.nextEnabled {
		return false, nil
	}
	v.currentPage += v.nextStep
	return true, nil
}

func (v *fakeView) WaitTableSettled(ctx context.Context) {}

func (v *fakeView) ClickAffordance(ctx context.Context, ref AffordanceRef) (ClickOutcome, error) {
	v.clicks = append(v.clicks, ref)
	if v.onClick != nil {
		v.onClick(ref)
	}
	return v.clickOutcome, v.clickErr
}

func (v *fakeView) DismissModal(ctx context.Context) {
	v.dismissed++
}
