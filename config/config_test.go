package config

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestFromEnvDefaults(t *testing.T) {
	c := qt.New(t)
	t.Setenv("DATABASE_URL", "sqlite:food.db")
	t.Setenv("PORT", "")
	t.Setenv("STALE_AFTER", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("R2_BUCKET_NAME", "")

	cfg, err := FromEnv()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Port, qt.Equals, "5000")
	c.Assert(cfg.StaleAfter, qt.Equals, 6*time.Hour)
	c.Assert(cfg.DigestInterval, qt.Equals, time.Minute)
	c.Assert(cfg.AllowedOrigins, qt.Equals, "http://localhost:5173")
	c.Assert(cfg.R2.Enabled(), qt.IsFalse)
}

func TestFromEnvRequiresDatabaseURL(t *testing.T) {
	c := qt.New(t)
	t.Setenv("DATABASE_URL", "")

	_, err := FromEnv()
	c.Assert(err, qt.ErrorMatches, "DATABASE_URL .*")
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	c := qt.New(t)
	t.Setenv("DATABASE_URL", "sqlite:food.db")
	t.Setenv("STALE_AFTER", "soon")

	_, err := FromEnv()
	c.Assert(err, qt.ErrorMatches, `invalid STALE_AFTER "soon": .*`)

	t.Setenv("STALE_AFTER", "-1h")
	_, err = FromEnv()
	c.Assert(err, qt.ErrorMatches, `invalid STALE_AFTER "-1h": must be positive`)
}

func TestNormalizeOrigins(t *testing.T) {
	c := qt.New(t)
	c.Assert(normalizeOrigins(" http://a.test , ,http://b.test"), qt.Equals, "http://a.test,http://b.test")
}
