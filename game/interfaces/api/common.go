package api

import (
	"time"

	"github.com/ubiproject-star/okey/common/http"
)

func PingHandler(c *http.Context) error {
	c.Success(map[string]any{
		"message":   "pong",
		"timestamp": time.Now().Unix(),
		"service":   "okey",
	})
	return nil
}
