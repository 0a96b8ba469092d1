package httpdto

// GraphQLRequest is the body of POST /graphql and the payload of a
// graphql-ws start message.
type GraphQLRequest struct {
	Query         string                 `json:"query" binding:"required"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}
