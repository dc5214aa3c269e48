package auth

import (
	"context"

	"vizin/pkg/model"
)

type Actor struct {
	ID   string
	Role model.Role
}

func (a Actor) IsHost() bool {
	return a.Role == model.RoleHost
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok && actor.ID != ""
}
