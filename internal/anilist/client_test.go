package anilist_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValgulNecron/kasuki/internal/anilist"
	"github.com/ValgulNecron/kasuki/internal/cache"
	"github.com/ValgulNecron/kasuki/internal/database/dbtest"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// fakeAniList answers queries with the handler registered for the first
// matching root field.
type fakeAniList struct {
	calls    atomic.Int32
	handlers map[string]func(vars map[string]any) (int, string)
}

func (f *fakeAniList) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)

	body, _ := io.ReadAll(r.Body)

	var req request
	if err := sonic.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for field, handler := range f.handlers {
		if strings.Contains(req.Query, field) {
			status, resp := handler(req.Variables)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(resp))

			return
		}
	}

	w.WriteHeader(http.StatusBadRequest)
}

func newClient(t *testing.T, fake *fakeAniList) *anilist.Client {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	fetcher := cache.NewFetcher(dbtest.NewClient(t).Model().Cache(), zap.NewNop())

	return anilist.NewClient(&config.AniList{Endpoint: server.URL}, fetcher,
		time.Hour, time.Hour, 5*time.Second, zap.NewNop())
}

func TestSearchMediaIsCached(t *testing.T) {
	t.Parallel()

	fake := &fakeAniList{handlers: map[string]func(map[string]any) (int, string){
		"Media(search": func(vars map[string]any) (int, string) {
			assert.Equal(t, "frieren", vars["search"])
			assert.Equal(t, "ANIME", vars["type"])

			return http.StatusOK, `{"data":{"Media":{
				"id":154587,"type":"ANIME","title":{"romaji":"Sousou no Frieren","english":"Frieren: Beyond Journey's End"},
				"episodes":28,"coverImage":{"large":"https://img/154587.png","color":"#e4a15d"},
				"nextAiringEpisode":null}}}`
		},
	}}

	client := newClient(t, fake)

	for range 2 {
		media, err := client.SearchMedia(t.Context(), "frieren", anilist.MediaTypeAnime)
		require.NoError(t, err)
		assert.Equal(t, 154587, media.ID)
		assert.Equal(t, "Frieren: Beyond Journey's End", media.Title.Preferred())
		require.NotNil(t, media.Episodes)
		assert.Equal(t, 28, *media.Episodes)
	}

	assert.Equal(t, int32(1), fake.calls.Load())
}

func TestNotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	fake := &fakeAniList{handlers: map[string]func(map[string]any) (int, string){
		"Character(search": func(map[string]any) (int, string) {
			return http.StatusNotFound, `{"errors":[{"message":"Not Found.","status":404}],"data":{"Character":null}}`
		},
		"Staff(search": func(map[string]any) (int, string) {
			return http.StatusOK, `{"errors":[{"message":"Internal Server Error","status":500}],"data":null}`
		},
	}}

	client := newClient(t, fake)

	for range 2 {
		_, err := client.SearchCharacter(t.Context(), "nobody")
		require.ErrorIs(t, err, anilist.ErrNotFound)
	}

	assert.Equal(t, int32(2), fake.calls.Load())

	_, err := client.SearchStaff(t.Context(), "someone")
	require.ErrorIs(t, err, anilist.ErrGraphQL)
}

func TestNextOccurrenceBypassesCache(t *testing.T) {
	t.Parallel()

	episode := atomic.Int32{}
	episode.Store(4)

	fake := &fakeAniList{handlers: map[string]func(map[string]any) (int, string){
		"Media(id: $id, type: ANIME)": func(vars map[string]any) (int, string) {
			if vars["id"] == float64(999) {
				return http.StatusOK, `{"data":{"Media":{"id":999,"title":{"romaji":"Done"},"nextAiringEpisode":null}}}`
			}

			ep := episode.Add(1)

			return http.StatusOK, `{"data":{"Media":{"id":1,"title":{"romaji":"Show"},` +
				`"nextAiringEpisode":{"airingAt":` + strconv.Itoa(int(ep)*1000) + `,"episode":` + strconv.Itoa(int(ep)) + `}}}}`
		},
	}}

	client := newClient(t, fake)

	next, err := client.NextOccurrence(t.Context(), "1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, int64(5000), next.FireAt)
	assert.Equal(t, "5", next.Episode)
	assert.Equal(t, "Show", next.DisplayName)

	next, err = client.NextOccurrence(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, "6", next.Episode)

	next, err = client.NextOccurrence(t.Context(), "999")
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = client.NextOccurrence(t.Context(), "abc")
	require.Error(t, err)
}

func TestRandomMediaWalksStatistics(t *testing.T) {
	t.Parallel()

	var pages []float64

	fake := &fakeAniList{handlers: map[string]func(map[string]any) (int, string){
		"SiteStatistics": func(vars map[string]any) (int, string) {
			page, _ := vars["page"].(float64)
			pages = append(pages, page)

			return http.StatusOK, `{"data":{"SiteStatistics":{"anime":{"pageInfo":{"hasNextPage":true},` +
				`"nodes":[{"date":1,"count":1},{"date":2,"count":1}]}}}}`
		},
		"Media(id: $id, type: $type)": func(vars map[string]any) (int, string) {
			assert.InDelta(t, 1, vars["id"], 0)
			return http.StatusOK, `{"data":{"Media":{"id":1,"type":"ANIME","title":{"romaji":"Cowboy Bebop"}}}}`
		},
	}}

	client := newClient(t, fake)

	media, err := client.RandomMedia(t.Context(), anilist.MediaTypeAnime)
	require.NoError(t, err)
	assert.Equal(t, "Cowboy Bebop", media.Title.Preferred())

	// Fresh statistics page is reused
	_, err = client.RandomMedia(t.Context(), anilist.MediaTypeAnime)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, pages)
}

func TestCleanDescription(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Line one\nLine two ||spoiler||",
		anilist.CleanDescription("<i>Line one</i><br>Line two ~!secret!~", 100))
	assert.Equal(t, "abcdefg...", anilist.CleanDescription("abcdefghijklmnop", 10))
	assert.Equal(t, 0xe4a15d, anilist.ParseColor("#e4a15d"))
	assert.Equal(t, 0, anilist.ParseColor("nope"))
}
