package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
	"umami-loadtest/internal/catalog"
	"umami-loadtest/internal/components/telemetry"
	"umami-loadtest/internal/loadtest"
	"umami-loadtest/internal/transport"
	"umami-loadtest/internal/visit"
	"umami-loadtest/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var checkFlows = map[string]func(l catalog.Locale) visit.Flow{
	"front":    visit.FrontPage,
	"articles": func(l catalog.Locale) visit.Flow { return visit.Listing(l, catalog.Article) },
	"recipes":  func(l catalog.Locale) visit.Flow { return visit.Listing(l, catalog.Recipe) },
	"article":  func(l catalog.Locale) visit.Flow { return visit.RandomNode(l, catalog.Article) },
	"recipe":   func(l catalog.Locale) visit.Flow { return visit.RandomNode(l, catalog.Recipe) },
	"basic":    visit.BasicPage,
	"node":     func(catalog.Locale) visit.Flow { return visit.NodeByID() },
	"contact":  visit.ContactForm,
}

func checkPages() []string {
	var pages []string
	for page := range checkFlows {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}

func checkFlow(page, locale string) (visit.Flow, error) {
	l, err := catalog.ParseLocale(locale)
	if err != nil {
		return nil, err
	}
	flow, ok := checkFlows[page]
	if !ok {
		return nil, fmt.Errorf("unknown page %q, expected one of %s", page, strings.Join(checkPages(), ", "))
	}
	return flow(l), nil
}

var (
	checkHost   *string
	checkLocale *string
	checkDump   *string
)

func init() {
	checkHost = checkCmd.Flags().String("host", "", "The site to check, defaults to the host of the config.")
	checkLocale = checkCmd.Flags().StringP("locale", "l", "en", "The locale to visit the page in (en or es).")
	checkDump = checkCmd.Flags().String("dump", "", "A directory to write every request and response to.")
	rootCmd.AddCommand(checkCmd)
}

type logEntry struct {
	Method   string
	Path     string
	Name     string
	Status   int
	Duration time.Duration
	Err      error
}

// requestLog is a visit.Fetcher that remembers every request it forwards.
type requestLog struct {
	inner visit.Fetcher

	mu      sync.Mutex
	entries []logEntry
}

func (r *requestLog) record(method, path, name string, start time.Time, res visit.Page, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{
		Method:   method,
		Path:     path,
		Name:     name,
		Status:   res.StatusCode,
		Duration: time.Since(start),
		Err:      err,
	})
}

func (r *requestLog) Get(ctx context.Context, path, name string) (visit.Page, error) {
	start := time.Now()
	res, err := r.inner.Get(ctx, path, name)
	r.record(http.MethodGet, path, name, start, res, err)
	return res, err
}

func (r *requestLog) Post(ctx context.Context, form visit.Form, name string) (visit.Page, error) {
	start := time.Now()
	res, err := r.inner.Post(ctx, form, name)
	r.record(http.MethodPost, form.Path, name, start, res, err)
	return res, err
}

func (r *requestLog) render(out io.Writer) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Method", "Path", "Name", "Status", "Time (ms)", "Error"})
	for _, e := range r.entries {
		status := "-"
		if e.Status != 0 {
			status = fmt.Sprint(e.Status)
		}
		errText := ""
		if e.Err != nil {
			errText = e.Err.Error()
		}
		t.AppendRow(table.Row{
			e.Method,
			e.Path,
			e.Name,
			status,
			fmt.Sprintf("%.1f", float64(e.Duration.Microseconds())/1000),
			errText,
		})
	}
	t.Render()
}

var checkCmd = &cobra.Command{
	Use:   "check <page> [--locale en|es] [--host <url>] [--dump <dir>]",
	Short: "Visits a single page once and prints every request it made.",
	Long:  "Visits a single page once and prints every request it made. Pages: " + strings.Join(checkPages(), ", ") + ".",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flow, err := checkFlow(args[0], *checkLocale)
		if err != nil {
			serviceutil.Fatal("invalid page", err)
		}

		cfg, err := loadtest.LoadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		opts := cfg.TransportOptions()
		if *checkHost != "" {
			opts.Host = *checkHost
		}
		if *checkDump != "" {
			output, err := transport.NewFilesystemOutput(*checkDump)
			if err != nil {
				serviceutil.Fatal("failed to create dump directory", err)
			}
			opts.Dump = output
		}

		tel := telemetry.SlogAPI{}
		client, err := transport.New(opts, tel)
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}
		log := &requestLog{inner: client}
		session := visit.NewSession(log, rand.New(rand.NewSource(time.Now().UnixNano())), tel)

		err = flow(cmd.Context(), session)
		log.render(os.Stdout)
		if err != nil {
			serviceutil.Fatal("check failed", err)
		}
	},
}
