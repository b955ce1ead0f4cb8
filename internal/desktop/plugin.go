package desktop

import "github.com/1broseidon/deskrun/internal/eventloop"

// EventContext is handed to plugins with every loop event.
type EventContext struct {
	Callback func(RunEvent)
	Handle   *Handle
}

// Plugin observes every loop event before the executor. Returning true
// skips the default handling of the event.
type Plugin interface {
	OnEvent(ev eventloop.Event[Message], ctx EventContext, cf *eventloop.ControlFlow) bool
}

// PluginBuilder builds a plugin once the runtime context exists.
type PluginBuilder interface {
	Build(ctx *Context) Plugin
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(ev eventloop.Event[Message], ctx EventContext, cf *eventloop.ControlFlow) bool

func (f PluginFunc) OnEvent(ev eventloop.Event[Message], ctx EventContext, cf *eventloop.ControlFlow) bool {
	return f(ev, ctx, cf)
}

// PluginBuilderFunc adapts a function to PluginBuilder.
type PluginBuilderFunc func(ctx *Context) Plugin

func (f PluginBuilderFunc) Build(ctx *Context) Plugin {
	return f(ctx)
}
