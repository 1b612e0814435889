package rabbitmq

import (
	"time"
)

const (
	DefaultRetryInterval = 100 * time.Millisecond
	DefaultMultiplicator = 2
	DefaultMaxInterval   = 30 * time.Second
)

// RetryPolicy of dialer reconnection.
type RetryPolicy interface {
	TryNum(i int) (duration time.Duration, stop bool)
}

// MaxInterval grows the wait linearly and gives up once it would exceed max.
type MaxInterval struct {
	base          time.Duration
	max           time.Duration
	multiplicator int
}

func NewDefaultMaxInterval() *MaxInterval {
	return &MaxInterval{base: DefaultRetryInterval, max: DefaultMaxInterval, multiplicator: DefaultMultiplicator}
}

// NewMaxInterval panics on zero arguments.
func NewMaxInterval(base, max time.Duration, multiplicator int) *MaxInterval {
	if base == 0 {
		panic("interval should not be 0")
	}
	if multiplicator == 0 {
		panic("multiplicator should not be 0")
	}
	if max == 0 {
		panic("max interval should not be 0")
	}
	return &MaxInterval{base: base, max: max, multiplicator: multiplicator}
}

func (m *MaxInterval) TryNum(tryNum int) (time.Duration, bool) {
	wait := m.base * time.Duration((tryNum+1)*m.multiplicator)
	if wait > m.max {
		return 0, true
	}
	return wait, false
}
