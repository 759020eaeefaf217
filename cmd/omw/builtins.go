package main

import (
	omw "github.com/alixinne/omw"
)

// builtins returns the demo function table every omw instance serves.
// Table order defines dispatch slots, so entries are only ever
// appended.
func builtins() []binding {
	return []binding{
		{
			Name:    "times",
			Usage:   "times(x, y): multiply two integers",
			Pattern: "{x_Integer, y_Integer}",
			Args:    "{x, y}",
			Handler: times,
		},
		{
			Name:    "utimes",
			Usage:   "utimes(x, y): multiply two unsigned integers",
			Pattern: "{x_Integer, y_Integer}",
			Args:    "{x, y}",
			Handler: utimes,
		},
		{
			Name:    "ftimes",
			Usage:   "ftimes(x, y): multiply two reals",
			Pattern: "{x_Real, y_Real}",
			Args:    "{x, y}",
			Handler: ftimes,
		},
		{
			Name:    "concat",
			Usage:   "concat(a, b): concatenate two strings",
			Pattern: "{a_String, b_String}",
			Args:    "{a, b}",
			Handler: concat,
		},
		{
			Name:    "not",
			Usage:   "not(p): negate a boolean",
			Pattern: "{p}",
			Args:    "{p}",
			Handler: not,
		},
	}
}

func times(c *omw.Call) error {
	x, err := c.Int(0, "x")
	if err != nil {
		return err
	}
	y, err := c.Int(1, "y")
	if err != nil {
		return err
	}
	return c.WriteInt(x * y)
}

func utimes(c *omw.Call) error {
	x, err := c.Uint(0, "x")
	if err != nil {
		return err
	}
	y, err := c.Uint(1, "y")
	if err != nil {
		return err
	}
	return c.WriteUint(x * y)
}

func ftimes(c *omw.Call) error {
	x, err := c.Float(0, "x")
	if err != nil {
		return err
	}
	y, err := c.Float(1, "y")
	if err != nil {
		return err
	}
	return c.WriteFloat(x * y)
}

func concat(c *omw.Call) error {
	a, err := c.String(0, "a")
	if err != nil {
		return err
	}
	b, err := c.String(1, "b")
	if err != nil {
		return err
	}
	return c.WriteString(a + b)
}

func not(c *omw.Call) error {
	p, err := c.Bool(0, "p")
	if err != nil {
		return err
	}
	return c.WriteBool(!p)
}
