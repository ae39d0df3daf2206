package main

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kbukum/apiclient/format"
	"github.com/kbukum/apiclient/httpclient"
	"github.com/kbukum/apiclient/logger"
	"github.com/kbukum/apiclient/observability"
)

type probeFlags struct {
	format       string
	expectStatus int
	baseURL      string
	configFile   string
	envFile      string
	timeout      time.Duration
	headers      map[string]string
	query        []string
	logLevel     string
	logFile      string
}

func (f *probeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.format, "format", "json", "Wire format: json, xml or yaml")
	fs.IntVar(&f.expectStatus, "expect-status", 0, "Require this status; a non-2xx value also requires a structured error body")
	fs.StringVar(&f.baseURL, "base-url", "", "Base URL (overrides client.base_url)")
	fs.StringVar(&f.configFile, "config", "", "Config file (default: config.yml search path)")
	fs.StringVar(&f.envFile, "env-file", "", "Env file to load before reading APIPROBE_* variables")
	fs.DurationVar(&f.timeout, "timeout", 0, "Request timeout (overrides client.timeout)")
	fs.StringToStringVarP(&f.headers, "header", "H", nil, "Extra header as name=value, repeatable")
	fs.StringArrayVarP(&f.query, "query", "q", nil, "Query parameter as key=value, repeatable")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (overrides logging.level)")
	fs.StringVar(&f.logFile, "log-file", "", "Write JSON logs to this file instead of stderr")
}

func newMethodCmd(name, method string, flags *probeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <path>",
		Short: fmt.Sprintf("Send a %s request and classify the response", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, flags, method, args[0])
		},
	}
}

// errUnexpectedOutcome marks a probe that ran but did not see what it expected.
var errUnexpectedOutcome = errors.New("unexpected outcome")

func runProbe(cmd *cobra.Command, flags *probeFlags, method, path string) error {
	query, err := parseQuery(flags.query)
	if err != nil {
		return err
	}
	if flags.configFile != "" {
		if _, err := os.Stat(flags.configFile); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	closeLog, err := initLogging(cfg, flags.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	metrics, shutdown, err := initObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	p := prober{
		cfg:     cfg.Client,
		method:  method,
		path:    path,
		query:   query,
		expect:  flags.expectStatus,
		metrics: metrics,
	}

	var res *result
	switch flags.format {
	case "json":
		res, err = probe[format.JSON, any](ctx, p)
	case "xml":
		res, err = probe[format.XML, xmlDocument](ctx, p)
	case "yaml":
		res, err = probe[format.YAML, any](ctx, p)
	default:
		return fmt.Errorf("unknown format %q (want json, xml or yaml)", flags.format)
	}
	if err != nil {
		return err
	}

	render(cmd.OutOrStdout(), res)
	if res.Err != nil {
		return fmt.Errorf("%w: %s", errUnexpectedOutcome, res.Verdict)
	}
	return nil
}

type prober struct {
	cfg     httpclient.Config
	method  string
	path    string
	query   [][2]string
	expect  int
	metrics *observability.Metrics
}

// xmlDocument accepts any single XML element except an HTML page, which is
// what gateways and proxies answer with in place of an API body.
type xmlDocument struct {
	XMLName xml.Name
	Inner   string `xml:",innerxml"`
}

func (d *xmlDocument) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	if strings.EqualFold(start.Name.Local, "html") {
		return fmt.Errorf("root element <%s> is a web page, not an API body", start.Name.Local)
	}
	type plain xmlDocument
	return dec.DecodeElement((*plain)(d), &start)
}

// probe executes the request once in format F, decoding both shapes as B.
// The returned error is only set when no request could be attempted; outcome
// failures land in the result.
func probe[F format.Format, B any](ctx context.Context, p prober) (*result, error) {
	opts := []httpclient.Option{httpclient.WithLogger(logger.Get(serviceName))}
	if p.metrics != nil {
		opts = append(opts, httpclient.WithMetrics(p.metrics))
	}
	c, err := httpclient.New[F](p.cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	req := c.NewRequest(p.method, p.path)
	for _, kv := range p.query {
		req.Query(kv[0], kv[1])
	}

	start := time.Now()
	resp, err := httpclient.Classify[B, B](ctx, req)
	res := newResult(req.Method(), req.URL(), resp, err, time.Since(start))
	judge(res, resp, err, p.expect)
	return res, nil
}

// parseQuery splits key=value pairs, rejecting any without "=".
func parseQuery(pairs []string) ([][2]string, error) {
	out := make([][2]string, 0, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("query %q must be formatted as key=value", kv)
		}
		out = append(out, [2]string{k, v})
	}
	return out, nil
}

// judge decides whether the outcome is the one asked for.
func judge[B any](r *result, resp *httpclient.Response[B], err error, expect int) {
	switch {
	case expect == 0:
		r.Err = err
	case expect >= http.StatusOK && expect < http.StatusMultipleChoices:
		if err != nil {
			r.Err = err
		} else {
			r.Err = resp.Context.ExpectStatus(expect)
		}
	default:
		_, r.Err = httpclient.NarrowResult[B, B](resp, err, expect)
	}

	if r.Err == nil {
		r.Verdict = "as expected"
		return
	}
	if k, ok := httpclient.KindOf(r.Err); ok {
		r.Verdict = k.String()
	} else {
		r.Verdict = "error"
	}
}

func initLogging(cfg *probeConfig, logFile string) (func(), error) {
	if logFile == "" {
		logger.Init(cfg.Logging)
		return func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetGlobalLogger(logger.NewWithWriter(f, cfg.Logging.Level, cfg.Name))
	return func() { _ = f.Close() }, nil
}

// initObservability starts OTLP exporters when enabled. Shutdown flushes them.
func initObservability(ctx context.Context, cfg *probeConfig) (*observability.Metrics, func(), error) {
	noop := func() {}
	if !cfg.Observability.Enabled {
		return nil, noop, nil
	}

	tp, err := observability.InitTracer(ctx, cfg.Observability.Tracer())
	if err != nil {
		return nil, noop, err
	}
	mc := cfg.Observability.Meter()
	mp, err := observability.InitMeter(ctx, &mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, noop, err
	}
	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, noop, err
	}

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			logger.Warn("tracer shutdown failed", logger.MergeWithError(nil, err))
		}
		if err := mp.Shutdown(sctx); err != nil {
			logger.Warn("meter shutdown failed", logger.MergeWithError(nil, err))
		}
	}
	return metrics, shutdown, nil
}
