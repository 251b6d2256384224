package actor

import "context"

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, act Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, act)
}

// FromContext extracts the actor from context, falling back to the guest
// variant when none was resolved at the boundary.
func FromContext(ctx context.Context) Actor {
	act, ok := ctx.Value(actorContextKey{}).(Actor)
	if !ok {
		return Guest()
	}
	return act
}
