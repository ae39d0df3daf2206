// Package apitest runs a stub upstream API for tests.
//
// Routes answer with a fixed status, body and content type. The server
// counts hits per route and keeps the last request seen on each, which is
// how tests prove a request was executed exactly once and carried the
// expected headers.
//
//	srv := apitest.New(t,
//	    apitest.JSON(http.MethodGet, "/pet/1", http.StatusOK, `{"status":"available"}`),
//	    apitest.JSON(http.MethodGet, "/pet/0", http.StatusNotFound, `{"message":"not found"}`),
//	)
//	// srv.URL, srv.Hits(http.MethodGet, "/pet/1")
package apitest
