package main

import (
	"fmt"
	"strconv"
	"time"
)

// delayValue is a pflag.Value for --delay. A bare integer is a number of
// seconds, as DELAY has always been; anything else must parse as a Go
// duration such as "250ms".
type delayValue time.Duration

func (d *delayValue) String() string {
	return time.Duration(*d).String()
}

func (d *delayValue) Set(s string) error {
	if secs, err := strconv.Atoi(s); err == nil {
		*d = delayValue(time.Duration(secs) * time.Second)
		return nil
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("want whole seconds or a duration: %w", err)
	}
	*d = delayValue(parsed)
	return nil
}

func (d *delayValue) Type() string {
	return "seconds|duration"
}
