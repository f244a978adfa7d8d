package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/paperscrape/internal/canvas"
)

// Draw runs the browser circle drawing against cfg.DrawURL.
func (a *App) Draw(ctx context.Context) (canvas.Result, error) {
	opts := canvas.Options{
		URL:      a.cfg.DrawURL,
		Points:   a.cfg.DrawPoints,
		Headless: a.cfg.Headless,
	}
	log.Info().Str("url", pick(opts.URL, canvas.DefaultURL)).Int("points", opts.Points).Msg("drawing circle")
	res, err := canvas.Draw(ctx, opts)
	if err != nil {
		return res, err
	}
	log.Debug().Float64("width", res.Canvas.Width).Float64("height", res.Canvas.Height).Msg("canvas")
	return res, nil
}
