package actorctx

import "context"

type ctxKey string

const keyActor ctxKey = "actor"

// Actor is the authenticated identity a request or job acts as. The lunch
// service reads it for its own authorization checks, independent of any
// router-level middleware.
type Actor struct {
	UserID  string
	Email   string
	Name    string
	IsAdmin bool
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

func From(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(keyActor).(Actor)

	return a, ok && a.UserID != ""
}

// System returns a context acting as the scheduler itself. It carries admin
// rights so the finalizer passes the same gates an admin would.
func System(ctx context.Context) context.Context {
	return WithActor(ctx, Actor{UserID: "system", Name: "scheduler", IsAdmin: true})
}
