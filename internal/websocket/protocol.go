package websocket

import "encoding/json"

// Subprotocol spoken on /graphql/ws.
const Subprotocol = "graphql-ws"

// graphql-ws message types.
const (
	MsgConnectionInit      = "connection_init"
	MsgConnectionAck       = "connection_ack"
	MsgConnectionError     = "connection_error"
	MsgConnectionTerminate = "connection_terminate"
	MsgStart               = "start"
	MsgStop                = "stop"
	MsgData                = "data"
	MsgError               = "error"
	MsgComplete            = "complete"
)

type OperationMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(id, msgType, message string) OperationMessage {
	payload, _ := json.Marshal(errorPayload{Message: message})
	return OperationMessage{ID: id, Type: msgType, Payload: payload}
}
