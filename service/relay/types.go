package relay

// Handler 处理一种入站事件
type Handler interface {
	Event() string
	Handle(ctx *Context, f *Frame, c *Client) error
}

type Context struct {
	S *Server
}
