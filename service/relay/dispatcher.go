package relay

import (
	errs "PPRelay/tools/errs"

	"github.com/golang/glog"
)

type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Event()] = h }

func (d *Dispatcher) Dispatch(ctx *Context, f *Frame, c *Client) error {
	h, ok := d.handlers[f.Event]
	if !ok {
		return errs.ErrNoHandler.WithDetail(f.Event)
	}
	return h.Handle(ctx, f, c)
}

func (d *Dispatcher) GetHandler(event string) Handler {
	h, ok := d.handlers[event]
	if !ok {
		glog.Infof("no handler for event=%s", event)
		return nil
	}
	return h
}
