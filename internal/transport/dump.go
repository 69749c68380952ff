package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"umami-loadtest/internal/visit"

	"github.com/go-resty/resty/v2"
)

// Output receives a rendered request/response pair for every request a Client makes.
type Output interface {
	Write(id string, contents string)
}

// FilesystemOutput writes every message to its own file in a directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput empties (or creates) dir.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message file", "id", id, "err", err)
	}
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		for _, v := range headers[k] {
			out = append(out, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(out, "\n")
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response url
// 7: response headers in ("Key: Value" format)
// 8: response body
const messageTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s %s

%s

%s`

func formatMessage(res *resty.Response, requestBody string, page visit.Page) string {
	var requestHeaders string
	if res.Request.RawRequest != nil {
		requestHeaders = formatHeaders(res.Request.RawRequest.Header)
	}
	return fmt.Sprintf(
		messageTemplate,

		res.Request.Method, res.Request.URL,
		requestHeaders,
		requestBody,

		strconv.Itoa(res.StatusCode()), page.URL,
		formatHeaders(res.Header()),
		page.Body,
	)
}

type dumper struct {
	output  Output
	counter atomic.Uint64
}

func (d *dumper) write(name string, res *resty.Response, requestBody string, page visit.Page) {
	id := fmt.Sprintf("%04d_%s", d.counter.Add(1), fileSafe(name))
	d.output.Write(id, formatMessage(res, requestBody, page))
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '%', ' ', ':':
			return '_'
		}
		return r
	}, name)
}
