package okvt

// Update describes one write: the path, the value it replaced, and the
// value written. Old is the Absent sentinel when the path had never
// been set.
type Update struct {
	Path string
	Old  Value
	New  Value
}

// CreateUpdateChannel registers a new listener and returns its channel.
// Every subsequent SetPath anywhere in the tree delivers one Update to
// every registered channel, in write order per channel. Delivery is
// best-effort: a receiver that has gone away or stopped draining loses
// updates rather than blocking the writer. This is the one boundary of
// the tree that is safe to consume from another goroutine.
func (t *Tree) CreateUpdateChannel() <-chan Update {
	ch := make(chan Update, t.config.UpdateChannelBuffer)
	t.root.listeners = append(t.root.listeners, ch)
	return ch
}

func (t *Tree) broadcast(u Update) {
	for _, ch := range t.root.listeners {
		select {
		case ch <- u:
		default:
			// receiver gone or saturated
		}
	}
}
