package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/apiclient/apitest"
	apperrors "github.com/kbukum/apiclient/errors"
	"github.com/kbukum/apiclient/format"
	"github.com/kbukum/apiclient/logger"
	"github.com/kbukum/apiclient/observability"
)

func TestClassifySuccess(t *testing.T) {
	body := `{"id":1,"name":"rex","status":"available"}`
	srv := apitest.New(t, apitest.JSON(http.MethodGet, "/pet/1", http.StatusOK, body))
	c := newClient[format.JSON](t, srv.URL)

	resp, err := Classify[pet, apiError](context.Background(), c.Get("/pet/1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Body != (pet{ID: 1, Name: "rex", Status: "available"}) {
		t.Errorf("unexpected body %+v", resp.Body)
	}

	rc := resp.Context
	if rc.Method() != http.MethodGet || rc.URL() != srv.URL+"/pet/1" || rc.StatusCode() != 200 || rc.Body() != body {
		t.Errorf("unexpected context %+v", rc)
	}
	if srv.Hits(http.MethodGet, "/pet/1") != 1 {
		t.Errorf("expected exactly one request, got %d", srv.Hits(http.MethodGet, "/pet/1"))
	}
}

func TestExpectOK(t *testing.T) {
	srv := apitest.New(t, apitest.JSON(http.MethodGet, "/pet/1", http.StatusOK, `{"status":"available"}`))
	c := newClient[format.JSON](t, srv.URL)

	got, err := ExpectOK[map[string]any, any](context.Background(), c.Get("/pet/1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["status"] != "available" {
		t.Errorf("unexpected body %v", got)
	}
}

func TestClassifyAPIErrorAndNarrow(t *testing.T) {
	srv := apitest.New(t, apitest.JSON(http.MethodGet, "/pet/9", http.StatusNotFound, `{"message":"not found"}`))
	c := newClient[format.JSON](t, srv.URL)

	_, err := Classify[pet, apiError](context.Background(), c.Get("/pet/9"))
	if !IsAPIError(err) {
		t.Fatalf("expected api error, got %v", err)
	}

	body, nerr := Narrow[apiError](err, http.StatusNotFound)
	if nerr != nil {
		t.Fatalf("expected narrowing to 404 to succeed, got %v", nerr)
	}
	if body.Message != "not found" {
		t.Errorf("unexpected body %+v", body)
	}

	_, nerr = Narrow[apiError](err, http.StatusBadRequest)
	var e *Error[apiError]
	if !errors.As(nerr, &e) || e.Kind != KindUnexpectedStatus {
		t.Fatalf("expected unexpected status, got %v", nerr)
	}
	if e.Expected != http.StatusBadRequest || e.StatusCode() != http.StatusNotFound {
		t.Errorf("expected 400 vs 404, got %d vs %d", e.Expected, e.StatusCode())
	}
	if !strings.HasPrefix(nerr.Error(), "GET "+srv.URL+"/pet/9\nexpected status 400, got 404") {
		t.Errorf("unexpected rendering %q", nerr.Error())
	}

	got, err := ExpectErr[pet, apiError](context.Background(), c.Get("/pet/9"), http.StatusNotFound)
	if err != nil || got.Message != "not found" {
		t.Errorf("ExpectErr: %+v %v", got, err)
	}
}

func TestClassifyUndecodableErrorBody(t *testing.T) {
	raw := "<html><body>Bad Request</body></html>"
	srv := apitest.New(t, apitest.Route{
		Method: http.MethodPost, Path: "/pets", Status: http.StatusBadRequest,
		Body: raw, ContentType: "text/html",
	})
	c := newClient[format.JSON](t, srv.URL)

	_, err := Classify[pet, apiError](context.Background(), c.Post("/pets").Body(pet{Name: "rex"}))
	if !IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
	text, ok := ResponseText(err)
	if !ok || text != raw {
		t.Errorf("expected raw body verbatim, got %q", text)
	}
	var de *format.DecodeError
	if !errors.As(err, &de) || de.Format != "json" {
		t.Errorf("expected json decode error in chain, got %v", err)
	}

	lines := strings.Split(err.Error(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected three lines, got %q", err.Error())
	}
	if lines[0] != "POST "+srv.URL+"/pets" {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "failed decoding response (status 400)") {
		t.Errorf("unexpected second line %q", lines[1])
	}
	if lines[2] != raw {
		t.Errorf("unexpected last line %q", lines[2])
	}

	if _, nerr := Narrow[apiError](err, http.StatusBadRequest); !IsDecode(nerr) {
		t.Errorf("expected decode to survive narrowing to its own status, got %v", nerr)
	}
}

func TestClassifyUndecodableErrorBodyXML(t *testing.T) {
	raw := "<html><body>Bad Request</body></html>"
	srv := apitest.New(t, apitest.Route{
		Method: http.MethodPost, Path: "/pets", Status: http.StatusBadRequest,
		Body: raw, ContentType: "text/html",
	})
	c := newClient[format.XML](t, srv.URL)

	_, err := Classify[pet, apiError](context.Background(), c.Post("/pets").Body(pet{Name: "rex"}))
	if !IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
	var de *format.DecodeError
	if !errors.As(err, &de) || de.Format != "xml" {
		t.Errorf("expected xml decode error in chain, got %v", err)
	}
	if text, _ := ResponseText(err); text != raw {
		t.Errorf("expected raw body verbatim, got %q", text)
	}
	if !strings.HasSuffix(err.Error(), "\n"+raw) {
		t.Errorf("expected rendering to end with the raw body, got %q", err.Error())
	}
}

func TestClassifyErrorBodyMissingRequiredField(t *testing.T) {
	raw := `{"error":"bad"}`
	srv := apitest.New(t, apitest.JSON(http.MethodGet, "/pet/1", http.StatusBadRequest, raw))
	c := newClient[format.JSON](t, srv.URL)

	_, err := Classify[pet, apiError](context.Background(), c.Get("/pet/1"))
	if !IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if !strings.Contains(err.Error(), "message: is required") {
		t.Errorf("expected missing field to be named, got %q", err.Error())
	}
	if rc, ok := ContextOf(err); !ok || rc.StatusCode() != http.StatusBadRequest || rc.Body() != raw {
		t.Errorf("expected context with status 400 and raw body, got %+v", rc)
	}
}

func TestClassifyUndecodableSuccessBody(t *testing.T) {
	srv := apitest.New(t, apitest.JSON(http.MethodGet, "/pet/1", http.StatusOK, `not json`))
	c := newClient[format.JSON](t, srv.URL)

	got, err := ExpectOK[pet, apiError](context.Background(), c.Get("/pet/1"))
	if !IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if got != (pet{}) {
		t.Errorf("expected zero value, got %+v", got)
	}
	if rc, ok := ContextOf(err); !ok || rc.StatusCode() != 200 {
		t.Errorf("expected context with status 200, got %+v", rc)
	}
	if srv.TotalHits() != 1 {
		t.Errorf("expected exactly one request, got %d", srv.TotalHits())
	}
}

func TestClassifyStatusPicksShape(t *testing.T) {
	// Same body, different status: the status decides which shape is tried.
	body := `{"id":3,"message":"hello"}`
	srv := apitest.New(t,
		apitest.JSON(http.MethodGet, "/ok", http.StatusOK, body),
		apitest.JSON(http.MethodGet, "/err", http.StatusInternalServerError, body),
		apitest.JSON(http.MethodGet, "/redirect", http.StatusNotModified, ""),
	)
	c := newClient[format.JSON](t, srv.URL)
	ctx := context.Background()

	resp, err := Classify[pet, apiError](ctx, c.Get("/ok"))
	if err != nil || resp.Body.ID != 3 {
		t.Errorf("expected success with pet body, got %+v %v", resp, err)
	}

	_, err = Classify[pet, apiError](ctx, c.Get("/err"))
	var e *Error[apiError]
	if !errors.As(err, &e) || e.Kind != KindAPI || e.Body.Message != "hello" {
		t.Errorf("expected api error with message, got %v", err)
	}

	_, err = Classify[pet, apiError](ctx, c.Get("/redirect"))
	if !IsDecode(err) {
		t.Errorf("expected 304 with empty body to fail decoding as the error shape, got %v", err)
	}
}

func TestClassifyErrorEnvelope(t *testing.T) {
	locked := apperrors.New("PET_LOCKED", "pet is locked", http.StatusLocked).WithDetail("pet_id", 1)
	srv := apitest.New(t, apitest.Failure(http.MethodGet, "/pet/1", locked))
	c := newClient[format.JSON](t, srv.URL)

	got, err := ExpectErr[pet, apperrors.ErrorResponse](context.Background(), c.Get("/pet/1"), http.StatusLocked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Error.Code != "PET_LOCKED" || got.Error.Message != "pet is locked" {
		t.Errorf("unexpected envelope %+v", got)
	}
	if got.Error.Details["pet_id"] != float64(1) {
		t.Errorf("expected details to survive, got %v", got.Error.Details)
	}
}

func TestExpectErrOnSuccess(t *testing.T) {
	srv := apitest.New(t, apitest.JSON(http.MethodDelete, "/pet/1", http.StatusOK, `{"id":1}`))
	c := newClient[format.JSON](t, srv.URL)

	_, err := ExpectErr[pet, apiError](context.Background(), c.Delete("/pet/1"), http.StatusNotFound)
	if !IsUnexpectedSuccess(err) {
		t.Fatalf("expected unexpected success, got %v", err)
	}
	if rc, ok := ContextOf(err); !ok || rc.Body() != `{"id":1}` {
		t.Errorf("expected the success context, got %+v", rc)
	}
}

func TestClassifyFormats(t *testing.T) {
	srv := apitest.New(t,
		apitest.XML(http.MethodGet, "/pet.xml", http.StatusOK, `<pet><id>5</id><name>rex</name></pet>`),
		apitest.XML(http.MethodGet, "/missing.xml", http.StatusNotFound, `<error><code>404</code><message>gone</message></error>`),
		apitest.YAML(http.MethodGet, "/pet.yaml", http.StatusOK, "id: 6\nname: fido\n"),
	)

	xc := newClient[format.XML](t, srv.URL)
	p, err := ExpectOK[pet, apiError](context.Background(), xc.Get("/pet.xml"))
	if err != nil || p.ID != 5 {
		t.Errorf("xml success: %+v %v", p, err)
	}
	e, err := ExpectErr[pet, apiError](context.Background(), xc.Get("/missing.xml"), http.StatusNotFound)
	if err != nil || e.Message != "gone" {
		t.Errorf("xml error: %+v %v", e, err)
	}
	rec, _ := srv.Last(http.MethodGet, "/pet.xml")
	if rec.Header.Get("Accept") != format.MIMEXML {
		t.Errorf("expected xml Accept, got %q", rec.Header.Get("Accept"))
	}

	yc := newClient[format.YAML](t, srv.URL)
	p, err = ExpectOK[pet, apiError](context.Background(), yc.Get("/pet.yaml"))
	if err != nil || p.Name != "fido" {
		t.Errorf("yaml success: %+v %v", p, err)
	}
}

func TestClassifySendsRequest(t *testing.T) {
	srv := apitest.New(t, apitest.JSON(http.MethodPost, "/pets", http.StatusCreated, `{"id":10,"name":"rex"}`))
	c := newClientWithConfig(t, Config{
		BaseURL:         srv.URL,
		RequestIDHeader: apitest.RequestIDHeader,
		Auth:            BearerAuth("tok"),
	})

	resp, err := Classify[pet, apiError](context.Background(), c.Post("/pets").Query("dry_run", "false").Body(pet{Name: "rex"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Context.URL() != srv.URL+"/pets?dry_run=false" {
		t.Errorf("expected context url with query, got %q", resp.Context.URL())
	}

	rec, ok := srv.Last(http.MethodPost, "/pets")
	if !ok {
		t.Fatal("expected a recorded request")
	}
	var sent pet
	if err := json.Unmarshal(rec.Body, &sent); err != nil || sent.Name != "rex" {
		t.Errorf("unexpected sent body %s", rec.Body)
	}
	if rec.Header.Get("Authorization") != "Bearer tok" {
		t.Errorf("expected auth header, got %q", rec.Header.Get("Authorization"))
	}
	if rec.Header.Get("Content-Type") != format.MIMEJSON {
		t.Errorf("unexpected Content-Type %q", rec.Header.Get("Content-Type"))
	}
	if rec.Header.Get(apitest.RequestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestClassifyBuildFailure(t *testing.T) {
	c := newClient[format.JSON](t, "http://127.0.0.1:1")

	_, err := Classify[pet, apiError](context.Background(), c.Post("/pets").Body(func() {}))
	if k, _ := KindOf(err); k != KindBuild {
		t.Fatalf("expected build failure, got %v", err)
	}
	if _, ok := ContextOf(err); ok {
		t.Error("build failures carry no context")
	}
	if !strings.HasPrefix(err.Error(), "failed building request: ") {
		t.Errorf("unexpected rendering %q", err.Error())
	}
}

func TestClassifyExecuteFailure(t *testing.T) {
	srv := apitest.Start()
	url := srv.URL
	srv.Close()

	c := newClient[format.JSON](t, url)
	_, err := Classify[pet, apiError](context.Background(), c.Get("/pet/1"))
	if k, _ := KindOf(err); k != KindExecute {
		t.Fatalf("expected execute failure, got %v", err)
	}
	if _, ok := ResponseText(err); ok {
		t.Error("execute failures carry no body")
	}
	if appErr := ToAppError(err); appErr.Code != apperrors.ErrCodeConnectionFailed {
		t.Errorf("expected CONNECTION_FAILED, got %s", appErr.Code)
	}
}

func TestClassifyTimeout(t *testing.T) {
	srv := apitest.New(t, apitest.Route{
		Method: http.MethodGet, Path: "/slow", Status: http.StatusOK, Body: `{}`,
		Delay: time.Second,
	})
	c := newClient[format.JSON](t, srv.URL)

	start := time.Now()
	_, err := Classify[pet, apiError](context.Background(), c.Get("/slow").Timeout(50*time.Millisecond))
	if k, _ := KindOf(err); k != KindExecute {
		t.Fatalf("expected execute failure, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("timeout not applied, took %s", elapsed)
	}
	if appErr := ToAppError(err); appErr.Code != apperrors.ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", appErr.Code)
	}
}

func TestClassifyCallerCancellation(t *testing.T) {
	srv := apitest.New(t, apitest.Route{Method: http.MethodGet, Path: "/slow", Status: 200, Delay: time.Second})
	c := newClient[format.JSON](t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Classify[pet, apiError](ctx, c.Get("/slow"))
	if !IsTransport(err) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled transport failure, got %v", err)
	}
}

type failingBody struct{ err error }

func (b failingBody) Read([]byte) (int, error) { return 0, b.err }
func (b failingBody) Close() error             { return nil }

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestClassifyReadFailure(t *testing.T) {
	readErr := errors.New("connection reset by peer")
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: failingBody{readErr}, Request: r}, nil
	})
	c := newClient[format.JSON](t, "http://upstream", WithDoer(doer))

	_, err := Classify[pet, apiError](context.Background(), c.Get("/pet/1"))
	if k, _ := KindOf(err); k != KindRead {
		t.Fatalf("expected read failure, got %v", err)
	}
	if !errors.Is(err, readErr) {
		t.Errorf("expected read error in chain, got %v", err)
	}
	if _, ok := ContextOf(err); ok {
		t.Error("read failures carry no context")
	}
}

func TestClassifyDoerErrorClosesBody(t *testing.T) {
	closed := false
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 302, Body: closeTracker{&closed}}, errors.New("stopped after redirect")
	})
	c := newClient[format.JSON](t, "http://upstream", WithDoer(doer))

	_, err := Classify[pet, apiError](context.Background(), c.Get("/"))
	if k, _ := KindOf(err); k != KindExecute {
		t.Fatalf("expected execute failure, got %v", err)
	}
	if !closed {
		t.Error("expected body of failed response to be closed")
	}
}

type closeTracker struct{ closed *bool }

func (c closeTracker) Read([]byte) (int, error) { return 0, io.EOF }
func (c closeTracker) Close() error             { *c.closed = true; return nil }

func TestClassifyConcurrent(t *testing.T) {
	srv := apitest.New(t, apitest.Route{
		Method: http.MethodGet, Path: "/pet/:id",
		Handler: func(c *gin.Context) {
			id := c.Param("id")
			if id == "0" {
				c.JSON(http.StatusNotFound, gin.H{"message": "no pet 0"})
				return
			}
			c.Data(http.StatusOK, format.MIMEJSON, []byte(`{"name":"pet-`+id+`"}`))
		},
	})
	c := newClient[format.JSON](t, srv.URL)

	g, ctx := errgroup.WithContext(context.Background())
	results := make([]string, 20)
	for i := range results {
		i := i
		g.Go(func() error {
			p, err := ExpectOK[pet, apiError](ctx, c.Get(fmt.Sprintf("/pet/%d", i)))
			if i == 0 {
				if _, nerr := Narrow[apiError](err, http.StatusNotFound); nerr != nil {
					return nerr
				}
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = p.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if want := fmt.Sprintf("pet-%d", i); results[i] != want {
			t.Errorf("result %d: expected %q, got %q", i, want, results[i])
		}
	}
	if srv.TotalHits() != len(results) {
		t.Errorf("expected %d requests, got %d", len(results), srv.TotalHits())
	}
}

func TestClassifyRecordsSpanAndMetrics(t *testing.T) {
	rec := installRecorder(t)
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
	metrics, reader := newManualMetrics(t)

	srv := apitest.New(t,
		apitest.JSON(http.MethodGet, "/pet/1", http.StatusOK, `{"id":1}`),
		apitest.JSON(http.MethodGet, "/pet/9", http.StatusNotFound, `{"message":"not found"}`),
	)
	c := newClient[format.JSON](t, srv.URL, WithMetrics(metrics))
	ctx := context.Background()

	_, _ = Classify[pet, apiError](ctx, c.Get("/pet/1"))
	_, _ = Classify[pet, apiError](ctx, c.Get("/pet/9"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	attrs := func(i int) map[attribute.Key]attribute.Value {
		m := make(map[attribute.Key]attribute.Value)
		for _, kv := range spans[i].Attributes() {
			m[kv.Key] = kv.Value
		}
		return m
	}

	ok := attrs(0)
	if ok[observability.AttrOutcomeKind].AsString() != "ok" || ok[observability.AttrStatusCode].AsInt64() != 200 {
		t.Errorf("unexpected success span attributes %v", ok)
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("expected ok span status, got %v", spans[0].Status())
	}

	failed := attrs(1)
	if failed[observability.AttrOutcomeKind].AsString() != "api_error" || failed[observability.AttrStatusCode].AsInt64() != 404 {
		t.Errorf("unexpected error span attributes %v", failed)
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("expected error span status, got %v", spans[1].Status())
	}

	counts := outcomeCounts(t, reader)
	if counts["ok"] != 1 || counts["api_error"] != 1 {
		t.Errorf("unexpected outcome counts %v", counts)
	}

	r, _ := srv.Last(http.MethodGet, "/pet/1")
	want := spans[0].SpanContext().TraceID().String()
	if tp := r.Header.Get("Traceparent"); !strings.Contains(tp, want) {
		t.Errorf("expected traceparent for trace %s, got %q", want, tp)
	}
}

func TestClassifyLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", "test")

	srv := apitest.New(t, apitest.JSON(http.MethodGet, "/pet/9", http.StatusNotFound, `{"message":"not found"}`))
	c := newClient[format.JSON](t, srv.URL, WithLogger(log))
	_, _ = Classify[pet, apiError](context.Background(), c.Get("/pet/9"))

	down := newClient[format.JSON](t, "http://upstream", WithLogger(log), WithDoer(doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: refused")
	})))
	_, _ = Classify[pet, apiError](context.Background(), down.Get("/pet/1"))

	var entries []map[string]any
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		entries = append(entries, m)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(entries), buf.String())
	}

	first := entries[0]
	if first["level"] != "debug" || first["message"] != "response classified" {
		t.Errorf("unexpected first entry %v", first)
	}
	if first[logger.FieldKind] != "api_error" || first[logger.FieldStatus] != float64(404) {
		t.Errorf("unexpected outcome fields %v", first)
	}
	if first["format"] != "json" || first["client"] == "" {
		t.Errorf("expected client fields, got %v", first)
	}

	second := entries[1]
	if second["level"] != "warn" || second[logger.FieldKind] != "execute" {
		t.Errorf("unexpected transport entry %v", second)
	}
	if !strings.Contains(fmt.Sprint(second[logger.FieldError]), "refused") {
		t.Errorf("expected error field, got %v", second)
	}
	if _, ok := second[logger.FieldStatus]; ok {
		t.Error("transport failures have no status")
	}
}

func TestClassifyKeepsQueryCredentialsOut(t *testing.T) {
	const secret = "s3cr3t"
	rec := installRecorder(t)
	srv := apitest.New(t, apitest.JSON(http.MethodGet, "/pet/9", http.StatusNotFound, `{"message":"gone"}`))
	c := newClientWithConfig(t, Config{BaseURL: srv.URL, Auth: APIKeyAuthQuery(secret, "api_key")})

	_, err := Classify[pet, apiError](context.Background(), c.Get("/pet/9"))
	if !IsAPIError(err) {
		t.Fatalf("expected api error, got %v", err)
	}
	if sent, _ := srv.Last(http.MethodGet, "/pet/9"); sent.Query.Get("api_key") != secret {
		t.Fatalf("expected key to be sent upstream, got %v", sent.Query)
	}
	envelope, jerr := json.Marshal(ToAppError(err).ToResponse())
	if jerr != nil {
		t.Fatalf("marshal envelope: %v", jerr)
	}
	if strings.Contains(string(envelope), secret) {
		t.Errorf("envelope leaks the key: %s", envelope)
	}
	if !strings.Contains(string(envelope), srv.URL+"/pet/9") {
		t.Errorf("expected target without query in envelope: %s", envelope)
	}

	var buf bytes.Buffer
	down := apitest.Start()
	downURL := down.URL
	down.Close()
	dc := newClientWithConfig(t, Config{BaseURL: downURL, Auth: APIKeyAuthQuery(secret, "api_key")},
		WithLogger(logger.NewWithWriter(&buf, "debug", "test")))

	_, err = Classify[pet, apiError](context.Background(), dc.Get("/pet/9"))
	if k, _ := KindOf(err); k != KindExecute {
		t.Fatalf("expected execute failure, got %v", err)
	}
	if strings.Contains(err.Error(), secret) {
		t.Errorf("transport error leaks the key: %v", err)
	}
	if strings.Contains(buf.String(), secret) {
		t.Errorf("warn log leaks the key: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "request failed") {
		t.Errorf("expected warn line, got %s", buf.String())
	}
	if !strings.Contains(ToAppError(err).Message, downURL+"/pet/9") {
		t.Errorf("expected redacted target in message, got %q", ToAppError(err).Message)
	}

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	for _, span := range spans {
		if strings.Contains(span.Status().Description, secret) {
			t.Errorf("span status leaks the key: %q", span.Status().Description)
		}
		for _, ev := range span.Events() {
			for _, attr := range ev.Attributes {
				if strings.Contains(attr.Value.Emit(), secret) {
					t.Errorf("span event %s leaks the key: %s", ev.Name, attr.Value.Emit())
				}
			}
		}
		for _, attr := range span.Attributes() {
			if strings.Contains(attr.Value.Emit(), secret) {
				t.Errorf("span attribute %s leaks the key", attr.Key)
			}
		}
	}
}
