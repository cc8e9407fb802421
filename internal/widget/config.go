package widget

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Position anchors the widget panel to a page corner.
type Position string

const (
	BottomRight Position = "bottom-right"
	BottomLeft  Position = "bottom-left"
	TopRight    Position = "top-right"
	TopLeft     Position = "top-left"
)

// Default panel geometry.
const (
	DefaultWidth  = 380
	DefaultHeight = 600
)

// Config configures one widget instance.
type Config struct {
	// BaseURL is the backend API root, e.g. "https://api.example.com/api/v1".
	BaseURL string

	// BotID identifies the embedding tenant. Opaque to the runtime.
	BotID string

	Position Position
	Width    int
	Height   int

	// HTTPClient overrides the transport; nil uses a 30s-timeout default.
	HTTPClient *http.Client

	Logger zerolog.Logger
}

func (c *Config) applyDefaults() {
	switch c.Position {
	case BottomRight, BottomLeft, TopRight, TopLeft:
	default:
		c.Position = BottomRight
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
}

// ConfigFromEnv builds a Config from WIDGET_* environment variables, the
// headless analog of the embed tag's data attributes.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL:  os.Getenv("WIDGET_API_URL"),
		BotID:    os.Getenv("WIDGET_BOT_ID"),
		Position: Position(os.Getenv("WIDGET_POSITION")),
	}
	if w, err := strconv.Atoi(os.Getenv("WIDGET_WIDTH")); err == nil {
		cfg.Width = w
	}
	if h, err := strconv.Atoi(os.Getenv("WIDGET_HEIGHT")); err == nil {
		cfg.Height = h
	}
	return cfg
}
