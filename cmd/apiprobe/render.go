package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kbukum/apiclient/httpclient"
)

type result struct {
	Method   string
	URL      string
	Status   int
	Outcome  string
	Size     int
	Duration time.Duration
	Body     string
	// Err is the classification error that made the probe fail, if any.
	Err     error
	Verdict string
}

func newResult[B any](method, url string, resp *httpclient.Response[B], err error, d time.Duration) *result {
	r := &result{Method: method, URL: url, Duration: d, Outcome: "ok"}

	var rc httpclient.ResponseContext
	var ok bool
	if resp != nil {
		rc, ok = resp.Context, true
	} else {
		rc, ok = httpclient.ContextOf(err)
	}
	if ok {
		r.URL = rc.URL()
		r.Status = rc.StatusCode()
		r.Size = len(rc.Body())
		r.Body = rc.Body()
	}
	if k, isOutcome := httpclient.KindOf(err); isOutcome {
		r.Outcome = k.String()
	}
	return r
}

func render(w io.Writer, r *result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Method", "URL", "Status", "Outcome", "Size", "Duration", "Verdict"})

	status := "-"
	if r.Status > 0 {
		status = strconv.Itoa(r.Status)
	}
	t.AppendRow(table.Row{
		r.Method, r.URL, status, r.Outcome,
		humanize.Bytes(uint64(r.Size)),
		r.Duration.Round(time.Millisecond),
		r.Verdict,
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()

	if r.Err != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Err)
		return
	}
	if r.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Body)
	}
}
