package main

import (
	"io"
	"net/http"
	url2 "net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_joinShowsSharedPuzzle(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)

	// Anonymous visitors get the join form.
	doc := srv.GetDoc(t, "/")
	require.Equal(t, 1, doc.Find("form[action='/join']").Length())

	doc = srv.Join(t, "アリス")
	assert.Contains(t, doc.Find("#puzzle").Text(), "ウミガメのスープ")
	assert.Equal(t, 1, doc.Find("form[action='/game/question']").Length())
}

func Test_gameRequiresParticipant(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)

	// The fragment routes bounce anonymous requests back to the join page.
	doc := srv.GetDoc(t, "/game/puzzle")
	assert.Equal(t, 1, doc.Find("form[action='/join']").Length())
}

func Test_questionAppearsInSharedTranscript(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)
	srv.Join(t, "アリス")

	question := "被害者は男性ですか？"
	srv.SubmitForm(t, "/", "/game/question", url2.Values{"question": {question}})

	// The answer lands via a background task, so poll the transcript fragment.
	require.Eventually(t, func() bool {
		doc := srv.GetDoc(t, "/game/transcript")
		entry := doc.Find(".transcript li").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), question)
		})
		return entry.Length() == 1 && strings.Contains(entry.Text(), "はい")
	}, 5*time.Second, 50*time.Millisecond)
}

func Test_transcriptIsSharedBetweenParticipants(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)
	srv.Join(t, "アリス")

	other := startedSecondSession(t, &srv)
	other.Join(t, "ボブ")

	question := "スープに毒が入っていましたか？"
	srv.SubmitForm(t, "/", "/game/question", url2.Values{"question": {question}})

	require.Eventually(t, func() bool {
		doc := other.GetDoc(t, "/game/transcript")
		text := doc.Find(".transcript").Text()
		return strings.Contains(text, question) && strings.Contains(text, "アリス")
	}, 5*time.Second, 50*time.Millisecond)
}

func Test_hintRevealsOnceButSurrenderRepeats(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)
	srv.Join(t, "アリス")

	// Pressing the hint button twice keeps a single transcript entry.
	srv.SubmitForm(t, "/", "/game/hint", nil)
	srv.SubmitForm(t, "/", "/game/hint", nil)

	doc := srv.GetDoc(t, "/game/puzzle")
	assert.Contains(t, doc.Find(".puzzle .hint").Text(), "遭難")

	require.Eventually(t, func() bool {
		doc = srv.GetDoc(t, "/game/transcript")
		return doc.Find(".transcript li").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), "ヒントを表示")
		}).Length() == 1
	}, 5*time.Second, 50*time.Millisecond)

	// Surrendering reveals the solution and logs every press.
	srv.SubmitForm(t, "/", "/game/surrender", nil)
	srv.SubmitForm(t, "/", "/game/surrender", nil)

	doc = srv.GetDoc(t, "/game/puzzle")
	assert.Contains(t, doc.Find(".puzzle .solution").Text(), "遭難")

	require.Eventually(t, func() bool {
		doc = srv.GetDoc(t, "/game/transcript")
		return doc.Find(".transcript li").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), "降参")
		}).Length() == 2
	}, 5*time.Second, 50*time.Millisecond)
}

func Test_hintIsPerParticipant(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)
	srv.Join(t, "アリス")

	other := startedSecondSession(t, &srv)
	other.Join(t, "ボブ")

	srv.SubmitForm(t, "/", "/game/hint", nil)

	doc := srv.GetDoc(t, "/game/puzzle")
	assert.NotEmpty(t, doc.Find(".puzzle .hint").Text())

	// The other participant has not revealed the hint.
	doc = other.GetDoc(t, "/game/puzzle")
	assert.Empty(t, doc.Find(".puzzle .hint").Text())
}

func Test_finalAnswerIsJudged(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)
	srv.Join(t, "アリス")

	srv.SubmitForm(t, "/", "/game/answer", url2.Values{"guess": {"昔食べたスープと味が違ったから"}})

	require.Eventually(t, func() bool {
		doc := srv.GetDoc(t, "/game/transcript")
		text := doc.Find(".transcript").Text()
		return strings.Contains(text, "【解答】") && strings.Contains(text, "正解")
	}, 5*time.Second, 50*time.Millisecond)
}

func Test_regenerateReplacesPuzzle(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)
	doc := srv.Join(t, "アリス")

	puzzleID, ok := doc.Find("form[action='/game/question'] input[name=puzzle_id]").Attr("value")
	require.True(t, ok)

	srv.SubmitForm(t, "/", "/game/regenerate", nil)

	require.Eventually(t, func() bool {
		doc = srv.GetDoc(t, "/")
		newID, found := doc.Find("form[action='/game/question'] input[name=puzzle_id]").Attr("value")
		return found && newID != puzzleID
	}, 5*time.Second, 50*time.Millisecond)
}

func Test_emptyQuestionIsRejected(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t, io.Discard, testLookupEnv)
	doc := srv.Join(t, "アリス")

	csrfToken, ok := doc.Find("form[action='/game/question'] input[name=csrf_token]").Attr("value")
	require.True(t, ok)
	puzzleID, ok := doc.Find("form[action='/game/question'] input[name=puzzle_id]").Attr("value")
	require.True(t, ok)

	formData := url2.Values{
		"csrf_token": {csrfToken},
		"puzzle_id":  {puzzleID},
		"question":   {"   "},
	}
	resp, err := srv.client.Post(
		srv.url+"/game/question", "application/x-www-form-urlencoded", strings.NewReader(formData.Encode()))
	require.NoError(t, err)
	defer func() {
		err = resp.Body.Close()
		assert.NoError(t, err)
	}()
	assert.Equal(t, 422, resp.StatusCode)
}

// startedSecondSession returns a client with its own cookie jar against the same server.
func startedSecondSession(t *testing.T, srv *testServer) testServer {
	t.Helper()
	jar, err := newUnsafeCookieJar()
	require.NoError(t, err)
	return testServer{url: srv.url, client: http.Client{Jar: jar}}
}
