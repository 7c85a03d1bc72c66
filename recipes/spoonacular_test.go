package recipes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDoer struct {
	doFunc func(req *http.Request) (*http.Response, error)
	reqs   []*http.Request
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.reqs = append(m.reqs, req)
	return m.doFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestSpoonacular_Lookup(t *testing.T) {
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/recipes/complexSearch":
			return jsonResponse(http.StatusOK, `{"results":[{"id":715538,"title":"Pasta Carbonara","image":"https://img/715538.jpg"}]}`), nil
		case "/recipes/715538/information":
			return jsonResponse(http.StatusOK, `{
				"title": "Pasta Carbonara",
				"servings": 4,
				"extendedIngredients": [
					{"name": "spaghetti", "amount": 400, "unit": "g", "image": "spaghetti.jpg"},
					{"name": "egg", "amount": 3, "unit": "", "image": ""}
				]
			}`), nil
		}
		return jsonResponse(http.StatusNotFound, ``), nil
	}}

	client := NewSpoonacular(SpoonacularOpts{BaseURL: "http://spoon.test/", APIKey: "k3y", HTTPClient: doer})
	got, err := client.Lookup(context.Background(), "carbonara", 2)
	require.NoError(t, err)

	assert.Equal(t, "Pasta Carbonara", got.Title)
	assert.Equal(t, "https://img/715538.jpg", got.Image)
	assert.Equal(t, 2, got.Servings)
	require.Len(t, got.Ingredients, 2)
	assert.InDelta(t, 200.0, got.Ingredients[0].Amount, 1e-9)
	assert.Equal(t, DefaultImageBaseURL+"spaghetti.jpg", got.Ingredients[0].Image)
	assert.InDelta(t, 1.5, got.Ingredients[1].Amount, 1e-9)
	assert.Empty(t, got.Ingredients[1].Image)

	require.Len(t, doer.reqs, 2)
	q := doer.reqs[0].URL.Query()
	assert.Equal(t, "carbonara", q.Get("query"))
	assert.Equal(t, "1", q.Get("number"))
	assert.Equal(t, "k3y", q.Get("apiKey"))
	assert.Equal(t, "k3y", doer.reqs[1].URL.Query().Get("apiKey"))
}

func TestSpoonacular_LookupMisses(t *testing.T) {
	tests := []struct {
		name     string
		doFunc   func(req *http.Request) (*http.Response, error)
		notFound bool
		errText  string
	}{
		{
			name: "no search results",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"results":[]}`), nil
			},
			notFound: true,
		},
		{
			name: "recipe without servings",
			doFunc: func(req *http.Request) (*http.Response, error) {
				if req.URL.Path == "/recipes/complexSearch" {
					return jsonResponse(http.StatusOK, `{"results":[{"id":1,"title":"Mystery"}]}`), nil
				}
				return jsonResponse(http.StatusOK, `{"title":"Mystery","extendedIngredients":[]}`), nil
			},
			notFound: true,
		},
		{
			name: "bad status",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusPaymentRequired, `{"message":"quota"}`), nil
			},
			errText: "Payment Required",
		},
		{
			name: "transport error",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			errText: "connection refused",
		},
		{
			name: "malformed body",
			doFunc: func(req *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `<html>`), nil
			},
			errText: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewSpoonacular(SpoonacularOpts{APIKey: "k", HTTPClient: &mockDoer{doFunc: tt.doFunc}})
			_, err := client.Lookup(context.Background(), "mystery", 2)
			require.Error(t, err)
			if tt.notFound {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			assert.False(t, errors.Is(err, ErrNotFound))
			assert.ErrorContains(t, err, tt.errText)
		})
	}
}

func TestSpoonacular_IngredientImage(t *testing.T) {
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/food/ingredients/search", req.URL.Path)
		if req.URL.Query().Get("query") == "milk" {
			return jsonResponse(http.StatusOK, `{"results":[{"name":"milk","image":"milk.png"}]}`), nil
		}
		return jsonResponse(http.StatusOK, `{"results":[]}`), nil
	}}
	client := NewSpoonacular(SpoonacularOpts{HTTPClient: doer, ImageBaseURL: "http://cdn/"})

	got, err := client.IngredientImage(context.Background(), "milk")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/milk.png", got)

	got, err = client.IngredientImage(context.Background(), "unobtainium")
	require.NoError(t, err)
	assert.Empty(t, got)
}
