package fetch

import (
	"time"
)

const (
	DefaultTimeout = time.Minute
	maxBodySize    = 32 << 20
)

type Option func(o *options)

type options struct {
	timeout time.Duration
}

func makeOptions(opts []Option) options {
	options := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Timeout limits the whole request including reading and parsing of the response.
func Timeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}
