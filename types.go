package groceryagent

import (
	"context"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}
