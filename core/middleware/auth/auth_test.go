package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(New(cfg))
	app.Get("/runs", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendString("metrics") })
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		target string
		header string
		want   int
	}{
		{name: "disabled", cfg: Config{}, target: "/runs", want: fiber.StatusOK},
		{name: "missing key", cfg: Config{ApiKey: "secret"}, target: "/runs", want: fiber.StatusUnauthorized},
		{name: "wrong key", cfg: Config{ApiKey: "secret"}, target: "/runs", header: "nope", want: fiber.StatusUnauthorized},
		{name: "header key", cfg: Config{ApiKey: "secret"}, target: "/runs", header: "secret", want: fiber.StatusOK},
		{name: "query key", cfg: Config{ApiKey: "secret"}, target: "/runs?api_key=secret", want: fiber.StatusOK},
		{name: "skipped path", cfg: Config{ApiKey: "secret", Skip: []string{"/metrics"}}, target: "/metrics", want: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(tt.cfg)
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(HeaderAPIKey, tt.header)
			}
			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
