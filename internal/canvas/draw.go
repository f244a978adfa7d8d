package canvas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// DefaultURL is the pi estimation page the command targets by default.
const DefaultURL = "https://yage.ai/genai/pi.html"

// Options configure a drawing run.
type Options struct {
	URL            string
	CanvasSelector string
	ButtonSelector string
	ResultSelector string
	Points         int
	Headless       bool
	// Settle is how long to wait after clicking before reading the result.
	Settle time.Duration
	// ExecPath overrides the browser binary.
	ExecPath string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.URL) == "" {
		o.URL = DefaultURL
	}
	if o.CanvasSelector == "" {
		o.CanvasSelector = "#drawingCanvas"
	}
	if o.ButtonSelector == "" {
		o.ButtonSelector = "#calculateBtn"
	}
	if o.ResultSelector == "" {
		o.ResultSelector = "#result"
	}
	if o.Settle <= 0 {
		o.Settle = time.Second
	}
	return o
}

// Result is what a run observed.
type Result struct {
	Canvas Rect
	Points int
	Text   string
}

const rectJS = `(function(sel){
	var r = document.querySelector(sel).getBoundingClientRect();
	return {x: r.x, y: r.y, width: r.width, height: r.height};
})(%q)`

// Draw opens the page, drags the mouse once around a circle on the canvas,
// presses the calculate button and returns the result text.
func Draw(ctx context.Context, opts Options) (Result, error) {
	opts = opts.withDefaults()

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", opts.Headless))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var rect Rect
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(opts.CanvasSelector, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(rectJS, opts.CanvasSelector), &rect),
	); err != nil {
		return Result{}, fmt.Errorf("load canvas: %w", err)
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return Result{}, errors.New("canvas has no area")
	}

	pts := CirclePoints(rect, opts.Points)
	var text string
	actions := strokeActions(rect, pts)
	actions = append(actions,
		chromedp.Click(opts.ButtonSelector, chromedp.ByQuery),
		chromedp.Sleep(opts.Settle),
		chromedp.Text(opts.ResultSelector, &text, chromedp.ByQuery),
	)
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return Result{}, fmt.Errorf("draw: %w", err)
	}
	return Result{Canvas: rect, Points: len(pts), Text: strings.TrimSpace(text)}, nil
}

// strokeActions presses at the first point, follows the deltas with the
// left button held and releases at the end. Coordinates are made absolute
// by adding the canvas origin.
func strokeActions(rect Rect, pts []Point) []chromedp.Action {
	held := func(p *input.DispatchMouseEventParams) *input.DispatchMouseEventParams {
		return p.WithButtons(1)
	}
	cur := Point{X: rect.X + pts[0].X, Y: rect.Y + pts[0].Y}
	out := []chromedp.Action{
		chromedp.MouseEvent(input.MouseMoved, cur.X, cur.Y),
		chromedp.MouseEvent(input.MousePressed, cur.X, cur.Y, chromedp.ButtonLeft, chromedp.ClickCount(1)),
	}
	for _, d := range Deltas(pts) {
		cur.X += d.X
		cur.Y += d.Y
		out = append(out, chromedp.MouseEvent(input.MouseMoved, cur.X, cur.Y, chromedp.ButtonLeft, held))
	}
	out = append(out, chromedp.MouseEvent(input.MouseReleased, cur.X, cur.Y, chromedp.ButtonLeft, chromedp.ClickCount(1)))
	return out
}
