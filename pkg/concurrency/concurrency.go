package concurrency

const defaultMax = 64

// DefaultGoLimit shared limiter for background scans.
var DefaultGoLimit = NewGoLimit(defaultMax)

// GoLimit caps the number of goroutines working at once.
type GoLimit struct {
	ch chan struct{}
}

// NewGoLimit new limiter allowing at most max concurrent holders.
func NewGoLimit(max int) *GoLimit {
	return &GoLimit{
		ch: make(chan struct{}, max),
	}
}

// Add acquires a slot, blocking until one is free.
func (g *GoLimit) Add() {
	g.ch <- struct{}{}
}

// Done releases a slot.
func (g *GoLimit) Done() {
	<-g.ch
}
