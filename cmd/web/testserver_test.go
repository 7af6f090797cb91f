package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	url2 "net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/turtlesoup/internal/ai"
	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/myrjola/turtlesoup/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOracle answers instantly so the tests never talk to a real model.
type stubOracle struct{}

func (stubOracle) GeneratePuzzle(_ context.Context) (ai.GeneratedPuzzle, error) {
	return ai.GeneratedPuzzle{
		Text:     "男はレストランでウミガメのスープを注文し、一口飲んで店を出た。なぜ？",
		Solution: "男はかつて遭難した際に食べたスープの味と違うことに気づいたから。",
		Hint:     "男は過去に海で遭難したことがある。",
	}, nil
}

func (stubOracle) AnswerQuestion(_ context.Context, _, _, _ string) (string, error) {
	return "はい", nil
}

func (stubOracle) JudgeFinalAnswer(_ context.Context, _, _ string) (string, error) {
	return "正解", nil
}

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 5-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 5 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "TURTLESOUP_ADDR":
		return "localhost:0", true
	case "TURTLESOUP_SQLITE_URL":
		return ":memory:", true
	case "TURTLESOUP_PPROF_PORT":
		return ":0", true
	case "TURTLESOUP_POLL_INTERVAL":
		return "100ms", true
	default:
		return "", false
	}
}

type testServer struct {
	url    string
	client http.Client
}

// startTestServer starts the test server, waits for it to be ready, and returns the server URL for testing.
func startTestServer(t *testing.T, w io.Writer, lookupEnv func(string) (string, bool)) testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "Addr" {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	// Start the server and wait for it to be ready.
	go func() {
		if err := run(ctx, logger, lookupEnv, stubOracle{}); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return testServer{} //nolint:exhaustruct // This is unreachable.
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		if err := waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)); err != nil {
			require.NoError(t, err)
		}
		jar, err := newUnsafeCookieJar()
		require.NoError(t, err)
		return testServer{
			url:    serverURL,
			client: http.Client{Jar: jar},
		}
	}
}

// Get fetches a URL and returns the response.
func (s *testServer) Get(t *testing.T, urlPath string) *http.Response {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return resp
}

// GetDoc fetches a URL and returns a goquery document.
func (s *testServer) GetDoc(t *testing.T, urlPath string) *goquery.Document {
	t.Helper()
	resp := s.Get(t, urlPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer func() {
		err := resp.Body.Close()
		require.NoError(t, err)
	}()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// SubmitForm finds the form posting to formActionURLPath on the page at
// formURLPath, carries over its hidden inputs, adds the given fields, submits
// it, and returns the response document.
func (s *testServer) SubmitForm(
	t *testing.T,
	formURLPath string,
	formActionURLPath string,
	fields url2.Values,
) *goquery.Document {
	t.Helper()
	doc := s.GetDoc(t, formURLPath)
	html, err := doc.Html()
	require.NoError(t, err)

	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector)
	require.Equal(t, 1, form.Length(), "form %s not found in document:\n%s", formSelector, html)

	formData := url2.Values{}
	form.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name, _ := input.Attr("name")
		value, _ := input.Attr("value")
		formData.Set(name, value)
	})
	for name, values := range fields {
		for _, value := range values {
			formData.Add(name, value)
		}
	}
	data := strings.NewReader(formData.Encode())

	resp, err := s.client.Post(s.url+formActionURLPath, "application/x-www-form-urlencoded", data)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer func(body io.ReadCloser) {
		err = body.Close()
		assert.NoError(t, err)
	}(resp.Body)

	doc, err = goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// Join registers a participant under the given name and returns the game page document.
func (s *testServer) Join(t *testing.T, displayName string) *goquery.Document {
	t.Helper()
	return s.SubmitForm(t, "/", "/join", url2.Values{"display_name": {displayName}})
}
