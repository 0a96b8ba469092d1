package gql

import (
	"context"
	_ "embed"

	"chatgraph/pkg/logger"

	graphql "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

// NewSchema parses the chat schema against the root resolver.
func NewSchema(r *Resolver, l *logger.Logger) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(8),
		graphql.Logger(panicLogger{l}),
	)
}

type panicLogger struct {
	logger *logger.Logger
}

func (p panicLogger) LogPanic(ctx context.Context, value interface{}) {
	if p.logger == nil {
		return
	}
	p.logger.WithContext(ctx).Sugar().Errorf("graphql resolver panic: %v", value)
}
