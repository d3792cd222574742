package utils

import (
	"github.com/gin-gonic/gin"
)

// Fixed user-facing messages. Clients only ever see these; the underlying
// error detail stays in the server log.
const (
	MsgUnauthorized  = "Unautorisiert: Falsches Passwort"
	MsgInternalError = "Ein interner Fehler ist aufgetreten."
	MsgBadRequest    = "Ungültige Anfrage."
)

// TextResponse writes a bare text body.
func TextResponse(c *gin.Context, code int, body string) {
	c.String(code, body)
}

// ErrorResponse writes one of the fixed user-safe messages. It deliberately
// takes no error value, so raw error text can never leak into a response.
func ErrorResponse(c *gin.Context, code int, message string) {
	c.String(code, message)
}
