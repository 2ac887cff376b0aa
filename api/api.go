package api

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tickchart/export"
	"tickchart/feed"
	"tickchart/model"
	"tickchart/render"
	"tickchart/surface"
	fiberhelpers "tickchart/utils/fiberhelper"
	"tickchart/utils/fiberhelper/middleware"
	"tickchart/utils/fiberhelper/response"
	"tickchart/utils/log"
)

const (
	FormatSVG = "svg"
	FormatPNG = "png"

	maxDimension = 4096
)

// RenderRequest is the body of POST /api/render/:kind. Points holds line samples or
// candles depending on the kind.
type RenderRequest struct {
	Config render.Config      `json:"config"`
	Points stdjson.RawMessage `json:"points"`
}

// Server serves static renders and exports over HTTP.
type Server struct {
	app  *fiber.App
	feed *feed.Feed
	base render.Config
	now  func() time.Time
	log  *logrus.Entry
}

func New(f *feed.Feed, base render.Config) *Server {
	s := &Server{feed: f, base: base, now: time.Now, log: log.Component("api")}
	s.app = fiber.New(fiber.Config{
		AppName:               "tickchart",
		ErrorHandler:          fiberhelpers.DefaultErrorHandler,
		DisableStartupMessage: true,
	})
	s.app.Use(fiberhelpers.NewRecover())
	s.app.Use(middleware.LogMiddleware("/health"))

	s.app.Get("/health", s.health)
	s.app.Get("/api/charts/:kind/:symbol.:format", s.chart)
	s.app.Post("/api/render/:kind", s.render)
	s.app.Get("/api/export/:symbol.:format", s.export)
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) health(c *fiber.Ctx) error {
	return response.Ext{Ctx: c}.Ok(fiber.Map{"status": "ok", "symbols": s.feed.Store().Symbols()})
}

// chart renders the stored history of a symbol as an image.
func (s *Server) chart(c *fiber.Ctx) error {
	kind, err := feed.ParseKind(c.Params("kind"))
	if err != nil {
		return fiberhelpers.BadRequest(err)
	}
	format, err := imageFormat(c.Params("format"))
	if err != nil {
		return err
	}
	cfg, err := s.config(c, render.Config{})
	if err != nil {
		return err
	}
	ds, err := s.feed.Load(c.UserContext(), c.Params("symbol"), kind)
	if err != nil {
		return upstream(err)
	}
	var surf *surface.Surface
	if kind == feed.Candle {
		surf = RenderCandles(ds.Candles, cfg)
	} else {
		surf = RenderLine(ds.Line, cfg)
	}
	return write(c, surf, format)
}

// render draws the posted samples without touching the feed.
func (s *Server) render(c *fiber.Ctx) error {
	kind, err := feed.ParseKind(c.Params("kind"))
	if err != nil {
		return fiberhelpers.BadRequest(err)
	}
	format, err := imageFormat(c.Query("format", FormatSVG))
	if err != nil {
		return err
	}
	req, err := fiberhelpers.RequestParse[RenderRequest](c)
	if err != nil {
		return err
	}
	cfg, err := s.config(c, req.Config)
	if err != nil {
		return err
	}

	var surf *surface.Surface
	switch kind {
	case feed.Candle:
		var points []model.OHLCPoint
		if err := decodePoints(req.Points, &points); err != nil {
			return err
		}
		surf = RenderCandles(points, cfg)
	default:
		var points []model.TimeValuePoint
		if err := decodePoints(req.Points, &points); err != nil {
			return err
		}
		surf = RenderLine(points, cfg)
	}
	return write(c, surf, format)
}

func (s *Server) export(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Params("format"))
	if err != nil {
		return fiberhelpers.BadRequest(err)
	}
	kind, err := feed.ParseKind(c.Query("kind", string(feed.Line)))
	if err != nil {
		return fiberhelpers.BadRequest(err)
	}
	ds, err := s.feed.Load(c.UserContext(), c.Params("symbol"), kind)
	if err != nil {
		return upstream(err)
	}
	doc := export.Document{Symbol: ds.Symbol, ExportedAt: s.now().UTC()}
	if kind == feed.Candle {
		doc.Candles = ds.Candles
	} else {
		doc.Line = ds.Line
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, doc); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", strings.ToLower(ds.Symbol)+"."+string(format)))
	return response.Ext{Ctx: c}.Blob(format.ContentType(), buf.Bytes())
}

// config layers the request options over the server defaults; width and height query
// parameters win over both.
func (s *Server) config(c *fiber.Ctx, req render.Config) (render.Config, error) {
	cfg := s.base
	cfg.Overlays = nil
	merge(&cfg, req)
	if w := c.QueryFloat("width", 0); w > 0 {
		cfg.Width = &w
	}
	if h := c.QueryFloat("height", 0); h > 0 {
		cfg.Height = &h
	}
	if overlays := c.Query("overlays"); overlays != "" {
		parsed, err := ParseOverlays(overlays)
		if err != nil {
			return cfg, fiberhelpers.BadRequest(err)
		}
		cfg.Overlays = parsed
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fiberhelpers.BadRequest(err)
	}
	if (cfg.Width != nil && *cfg.Width > maxDimension) || (cfg.Height != nil && *cfg.Height > maxDimension) {
		return cfg, fiberhelpers.BadRequest(fmt.Errorf("%w: dimensions above %d", render.ErrInvalidConfig, maxDimension))
	}
	return cfg, nil
}

func merge(dst *render.Config, src render.Config) {
	if src.Width != nil {
		dst.Width = src.Width
	}
	if src.Height != nil {
		dst.Height = src.Height
	}
	if src.Margins != nil {
		dst.Margins = src.Margins
	}
	if src.UpColor != nil {
		dst.UpColor = src.UpColor
	}
	if src.DownColor != nil {
		dst.DownColor = src.DownColor
	}
	if src.LineColor != nil {
		dst.LineColor = src.LineColor
	}
	if src.StrokeWidth != nil {
		dst.StrokeWidth = src.StrokeWidth
	}
	if src.Overlays != nil {
		dst.Overlays = src.Overlays
	}
}

func imageFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case FormatSVG, FormatPNG:
		return f, nil
	}
	return "", fiberhelpers.BadRequest(fmt.Errorf("unknown image format %q", s))
}

func decodePoints(raw stdjson.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := stdjson.Unmarshal(raw, dst); err != nil {
		return fiberhelpers.BadRequest(fmt.Errorf("decode points: %w", err))
	}
	return nil
}

func upstream(err error) error {
	if errors.Is(err, feed.ErrUnknownKind) {
		return fiberhelpers.BadRequest(err)
	}
	return fiberhelpers.NewStatusError(fiber.StatusBadGateway, err)
}

func write(c *fiber.Ctx, surf *surface.Surface, format string) error {
	var buf bytes.Buffer
	var err error
	contentType := "image/svg+xml"
	if format == FormatPNG {
		contentType = "image/png"
		err = surf.WritePNG(&buf)
	} else {
		err = surf.WriteSVG(&buf)
	}
	if errors.Is(err, surface.ErrEmptySurface) {
		return fiberhelpers.NewStatusError(fiber.StatusUnprocessableEntity, err)
	}
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Blob(contentType, buf.Bytes())
}
