package services

import (
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"golang.org/x/sync/errgroup"
)

func TestRegisterAndLogin(t *testing.T) {
	c := qt.New(t)
	users := NewUserService(newTestDB(c))
	ctx := context.Background()

	user, err := users.Register(ctx, RegisterInput{
		Name:     "Hope NGO",
		Email:    "Team@Hope.org",
		Password: "secret1",
		Role:     "NGO",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(user.ID, qt.Not(qt.Equals), uint(0))
	c.Assert(user.Email, qt.Equals, "team@hope.org")
	c.Assert(user.Role, qt.Equals, "ngo")
	c.Assert(user.Password, qt.Not(qt.Equals), "secret1")

	got, err := users.Login(ctx, "team@hope.org", "secret1")
	c.Assert(err, qt.IsNil)
	c.Assert(got.ID, qt.Equals, user.ID)

	_, err = users.Login(ctx, "team@hope.org", "wrong-password")
	c.Assert(err, qt.ErrorIs, ErrInvalidCredentials)
	_, err = users.Login(ctx, "nobody@hope.org", "secret1")
	c.Assert(err, qt.ErrorIs, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	c := qt.New(t)
	users := NewUserService(newTestDB(c))
	ctx := context.Background()

	valid := RegisterInput{Name: "Asha", Email: "asha@example.org", Password: "secret1", Role: "volunteer"}
	_, err := users.Register(ctx, valid)
	c.Assert(err, qt.IsNil)

	tests := []struct {
		about string
		edit  func(*RegisterInput)
		field string
	}{
		{"missing name", func(in *RegisterInput) { in.Name = "" }, "name"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }, "password"},
		{"unknown role", func(in *RegisterInput) { in.Role = "admin" }, "role"},
		{"duplicate email", func(in *RegisterInput) {}, "email"},
	}
	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			in := valid
			test.edit(&in)
			_, err := users.Register(ctx, in)
			var verr *ValidationError
			c.Assert(errors.As(err, &verr), qt.IsTrue, qt.Commentf("got %v", err))
			c.Assert(verr.Field, qt.Equals, test.field)
		})
	}
}

func TestConcurrentRegisterSameEmail(t *testing.T) {
	c := qt.New(t)
	users := NewUserService(newTestDB(c))
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			_, errs[i] = users.Register(ctx, RegisterInput{
				Name:     "Hope NGO",
				Email:    "team@hope.org",
				Password: "secret1",
				Role:     "ngo",
			})
			return nil
		})
	}
	c.Assert(g.Wait(), qt.IsNil)

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var verr *ValidationError
		c.Assert(errors.As(err, &verr), qt.IsTrue, qt.Commentf("got %v", err))
		c.Assert(verr.Field, qt.Equals, "email")
	}
	c.Assert(succeeded, qt.Equals, 1)
}
