package game

import "sync"

// scoreCapture gates name submissions for one pending score.
// The first accepted submission wins; later ones are ignored.
type scoreCapture struct {
	lock         sync.Mutex
	active       bool
	nameReceived bool
	score        int
	names        chan string
}

func newScoreCapture() *scoreCapture {
	return &scoreCapture{
		names: make(chan string, 1),
	}
}

func (c *scoreCapture) open(score int) {
	c.lock.Lock()
	defer c.lock.Unlock()

	select {
	case <-c.names:
	default:
	}
	c.active = true
	c.nameReceived = false
	c.score = score
}

// submit hands the name to the waiting engine. It reports false if no score
// is pending or a name was already accepted.
func (c *scoreCapture) submit(name string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.active || c.nameReceived {
		return false
	}
	c.nameReceived = true
	// the buffer is empty while nameReceived was false
	c.names <- name
	return true
}

func (c *scoreCapture) close() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.active = false
}

// pending returns the score waiting for a name.
func (c *scoreCapture) pending() (int, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.score, c.active && !c.nameReceived
}
