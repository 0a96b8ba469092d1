package gql

import (
	"chatgraph/internal/domain/user"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/samber/lo"
)

type UserResolver struct {
	user user.User
}

func (r *UserResolver) ID() graphql.ID {
	return graphql.ID(r.user.ID.String())
}

func (r *UserResolver) Username() string {
	return r.user.Username
}

func (r *UserResolver) Name() string {
	return r.user.Name
}

func (r *UserResolver) Picture() *string {
	return r.user.Picture
}

func toUserResolvers(list []user.User) []*UserResolver {
	return lo.Map(list, func(u user.User, _ int) *UserResolver { return &UserResolver{user: u} })
}
