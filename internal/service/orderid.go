package service

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const orderIDPrefix = "ORD-"

// NewOrderID returns "ORD-" followed by the first 40 bits of a random UUID
// as uppercase hex.
func NewOrderID() string {
	id := uuid.New()
	return orderIDPrefix + strings.ToUpper(hex.EncodeToString(id[:5]))
}
