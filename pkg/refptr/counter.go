package refptr

const maxCount = ^uint(0)

// counter is the block shared by all handles referencing one payload. It
// tracks strong and weak references independently, handles mutate it
// directly.
type counter struct {
	strong uint
	weak   uint
	freed  bool
}

func newCounter() *counter {
	c := new(counter)
	c.init()
	return c
}

// init prepares a block for a freshly constructed payload.
func (c *counter) init() {
	c.strong = 1
	c.weak = 0
	blocksAllocated.Inc()
	blocksLive.Inc()
}

func (c *counter) incStrong() {
	c.check()
	switch c.strong {
	case 0:
		panic("refptr: strong reference to a destroyed payload")
	case maxCount:
		panic("refptr: strong refcount overflow")
	}
	c.strong++
}

func (c *counter) decStrong() uint {
	c.check()
	if c.strong == 0 {
		panic("refptr: strong refcount underflow")
	}
	c.strong--
	return c.strong
}

func (c *counter) incWeak() {
	c.check()
	if c.weak == maxCount {
		panic("refptr: weak refcount overflow")
	}
	c.weak++
}

func (c *counter) decWeak() uint {
	c.check()
	if c.weak == 0 {
		panic("refptr: weak refcount underflow")
	}
	c.weak--
	return c.weak
}

// tryFree frees the block once both counts are zero. It's safe to call it
// more than once, only the first call with both counts at zero has any
// effect.
func (c *counter) tryFree() {
	if c.freed || c.strong != 0 || c.weak != 0 {
		return
	}
	c.freed = true
	blocksFreed.Inc()
	blocksLive.Dec()
	logger().Debug("counter block freed")
}

func (c *counter) check() {
	if c.freed {
		panic("refptr: use of a freed counter block")
	}
}
