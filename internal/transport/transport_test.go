package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"umami-loadtest/internal/testutil"
	"umami-loadtest/internal/visit"

	"github.com/stretchr/testify/require"
)

func newTestClient(t testing.TB, host string, opts Options) *Client {
	opts.Host = host
	client, err := New(opts, &testutil.RecordingAPI{})
	require.NoError(t, err)
	return client
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "umami-loadtest/1.0", r.Header.Get("user-agent"))
		switch r.URL.Path {
		case "/":
			w.Header().Set("content-type", "text/html; charset=UTF-8")
			w.Write([]byte("<title>Home | Umami</title>"))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("<title>Page not found</title>"))
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/", Options{})

	res, err := client.Get(context.Background(), "/", "anon /")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, srv.URL+"/", res.URL)
	require.Equal(t, "<title>Home | Umami</title>", res.Body)

	// a non-2xx status is a response like any other
	res, err = client.Get(context.Background(), "/missing", "anon /missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, "<title>Page not found</title>", res.Body)
}

func TestGetDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=ISO-8859-1")
		// "Artículos" in latin-1
		w.Write([]byte("<title>Art\xedculos</title>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	res, err := client.Get(context.Background(), "/es/articles/", "anon /es/articles/")
	require.NoError(t, err)
	require.Equal(t, "<title>Artículos</title>", res.Body)
}

func TestGetFollowsRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/node/18" {
			http.Redirect(w, r, "/en/about-umami", http.StatusMovedPermanently)
			return
		}
		w.Write([]byte("<title>About Umami</title>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	res, err := client.Get(context.Background(), "/node/18", "anon /node/%nid")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/en/about-umami", res.URL)
}

func TestCookiesArePerClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("SESS"); err != nil {
			http.SetCookie(w, &http.Cookie{Name: "SESS", Value: "abc", Path: "/"})
			w.Write([]byte("new"))
			return
		}
		w.Write([]byte("returning"))
	}))
	defer srv.Close()

	first := newTestClient(t, srv.URL, Options{})
	second := newTestClient(t, srv.URL, Options{})

	res, err := first.Get(context.Background(), "/", "")
	require.NoError(t, err)
	require.Equal(t, "new", res.Body)
	res, err = first.Get(context.Background(), "/", "")
	require.NoError(t, err)
	require.Equal(t, "returning", res.Body)

	res, err = second.Get(context.Background(), "/", "")
	require.NoError(t, err)
	require.Equal(t, "new", res.Body)
}

func TestPostKeepsFieldOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/en/contact/feedback", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("content-type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, "op=Send+message&form_build_id=form-abc&name=x", string(body))

		w.Write([]byte("You cannot send more than 5 messages"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	res, err := client.Post(context.Background(), visit.Form{
		Path: "/en/contact/feedback",
		Fields: []visit.Field{
			{Name: "op", Value: "Send message"},
			{Name: "form_build_id", Value: "form-abc"},
			{Name: "name", Value: "x"},
		},
	}, "anon /en/contact/feedback")
	require.NoError(t, err)
	require.Equal(t, "You cannot send more than 5 messages", res.Body)
}

func TestNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := srv.URL
	srv.Close()

	client := newTestClient(t, host, Options{Timeout: time.Second})
	res, err := client.Get(context.Background(), "/", "anon /")
	require.ErrorIs(t, err, visit.ErrNoResponse)
	require.Equal(t, "/", res.URL)
}

func TestTimeoutIsNoResponse(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := newTestClient(t, srv.URL, Options{Timeout: 50 * time.Millisecond})
	_, err := client.Get(context.Background(), "/", "anon /")
	require.ErrorIs(t, err, visit.ErrNoResponse)
}

func TestTruncatedBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		// longer than the charset sniffing preview, so the truncation surfaces while reading
		buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: 5000\r\n\r\n<title>Home")
		buf.WriteString(strings.Repeat("<p>umami</p>", 200))
		buf.Flush()
		conn.Close()
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	res, err := client.Get(context.Background(), "/", "anon /")
	require.ErrorIs(t, err, visit.ErrDecode)
	require.Equal(t, "text/html", res.Header.Get("content-type"))
}

func TestRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{RequestsPerSecond: 10})

	start := time.Now()
	for i := 0; i < 6; i++ {
		_, err := client.Get(context.Background(), "/", "")
		require.NoError(t, err)
	}
	// burst of 10 covers every request
	require.Less(t, time.Since(start), 500*time.Millisecond)

	client = newTestClient(t, srv.URL, Options{RequestsPerSecond: 20})
	// the 20 request burst is spent, the next 4 wait 50ms each
	start = time.Now()
	for i := 0; i < 24; i++ {
		_, err := client.Get(context.Background(), "/", "")
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Get(ctx, "/", "")
	require.ErrorIs(t, err, visit.ErrNoResponse)
}

type memoryOutput struct {
	ids      []string
	messages map[string]string
}

func (m *memoryOutput) Write(id string, contents string) {
	if m.messages == nil {
		m.messages = map[string]string{}
	}
	m.ids = append(m.ids, id)
	m.messages[id] = contents
}

func TestDump(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html; charset=UTF-8")
		w.Write([]byte("<title>Contact | Umami</title>"))
	}))
	defer srv.Close()

	output := &memoryOutput{}
	client := newTestClient(t, srv.URL+"/", Options{Dump: output})

	_, err := client.Get(context.Background(), "/en/contact/feedback", "anon /en/contact/feedback")
	require.NoError(t, err)
	_, err = client.Post(context.Background(), visit.Form{
		Path:   "/en/contact/feedback",
		Fields: []visit.Field{{Name: "name", Value: "Umami load test"}},
	}, "anon /en/contact/feedback")
	require.NoError(t, err)

	require.Equal(t, []string{"0001_anon__en_contact_feedback", "0002_anon__en_contact_feedback"}, output.ids)
	post := output.messages[output.ids[1]]
	require.Contains(t, post, "---- REQUEST ----\n\nPOST ")
	require.Contains(t, post, "name=Umami+load+test")
	require.Contains(t, post, "---- RESPONSE ----\n\n200 ")
	require.Contains(t, post, "<title>Contact | Umami</title>")
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("0001_anon", "message")

	contents, err := os.ReadFile(filepath.Join(dir, "0001_anon.txt"))
	require.NoError(t, err)
	require.Equal(t, "message", string(contents))

	// the directory starts out empty every time
	output, err = NewFilesystemOutput(dir)
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
