package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gofiber/fiber/v2"

	"leftover-food-system/models"
)

func status(c *qt.C, app *fiber.App, headers map[string]string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	c.Assert(err, qt.IsNil)
	resp.Body.Close()
	return resp.StatusCode
}

func TestGatewayAuthMiddleware(t *testing.T) {
	c := qt.New(t)

	app := fiber.New()
	app.Use(GatewayAuthMiddleware("s3cret"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	tests := []struct {
		about  string
		header string
		want   int
	}{{
		about: "missing header",
		want:  http.StatusUnauthorized,
	}, {
		about:  "wrong token",
		header: "Bearer nope",
		want:   http.StatusUnauthorized,
	}, {
		about:  "bearer token",
		header: "Bearer s3cret",
		want:   http.StatusNoContent,
	}, {
		about:  "raw token",
		header: "s3cret",
		want:   http.StatusNoContent,
	}}
	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			headers := map[string]string{}
			if test.header != "" {
				headers["Authorization"] = test.header
			}
			c.Assert(status(c, app, headers), qt.Equals, test.want)
		})
	}
}

func TestGatewayAuthDisabledWithoutToken(t *testing.T) {
	c := qt.New(t)

	app := fiber.New()
	app.Use(GatewayAuthMiddleware(""))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	c.Assert(status(c, app, nil), qt.Equals, http.StatusNoContent)
}

func TestActorContextMiddleware(t *testing.T) {
	c := qt.New(t)

	var got models.Actor
	var present bool
	app := fiber.New()
	app.Use(ActorContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		got, present = c.Locals("actor").(models.Actor)
		return c.SendStatus(fiber.StatusNoContent)
	})

	c.Assert(status(c, app, nil), qt.Equals, http.StatusNoContent)
	c.Assert(present, qt.IsFalse)

	code := status(c, app, map[string]string{
		"X-User-ID":   "42",
		"X-User-Name": " Hope NGO ",
		"X-User-Role": "NGO",
	})
	c.Assert(code, qt.Equals, http.StatusNoContent)
	c.Assert(present, qt.IsTrue)
	c.Assert(got, qt.DeepEquals, models.Actor{ID: 42, Name: "Hope NGO", Role: models.RoleNGO})

	c.Assert(status(c, app, map[string]string{"X-User-ID": "0"}), qt.Equals, http.StatusBadRequest)
	c.Assert(status(c, app, map[string]string{"X-User-ID": "-3"}), qt.Equals, http.StatusBadRequest)
	c.Assert(status(c, app, map[string]string{"X-User-ID": "7", "X-User-Role": "admin"}), qt.Equals, http.StatusBadRequest)
}
