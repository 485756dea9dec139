// Package api is the node's HTTP/WebSocket surface: out of the core per
// spec §1, but the outer shell that makes the core reachable. Built on
// gin-gonic/gin and gorilla/websocket, grounded in
// other_examples/manifests/leanlp-BTC-coinjoin (gin+gorilla+uuid) and
// k256-xyz-k256-sdks (gorilla/websocket).
package api

import "github.com/gin-gonic/gin"

// envelope is the {success, data?, error?} wire shape every JSON response
// uses, realizing the Accepted{T}/Rejected{kind, msg} tagged variant from
// the Design Notes at the edge.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(200, envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, envelope{Success: false, Error: err.Error()})
}
