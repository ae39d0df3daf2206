// Package httpclient executes one HTTP request and classifies the answer into
// a closed set of outcomes.
//
// A Client is parameterised by its wire format. Requests are built with the
// verb helpers and handed to Classify, which builds, sends and reads the
// response exactly once. The status code decides which shape the body is
// decoded into: 2xx bodies decode as Ok, everything else as the API's error
// shape E.
//
//	type Pet struct{ Status string `json:"status"` }
//	type APIError struct{ Message string `json:"message"` }
//
//	client, err := httpclient.New[format.JSON](httpclient.Config{
//	    BaseURL: "https://petstore.example.com/v2",
//	})
//
//	pet, err := httpclient.ExpectOK[Pet, APIError](ctx, client.Get("/pet/1"))
//
// Failures come back as *Error[E]. Narrow turns "this must be a structured
// error with status N" into a value or an UnexpectedStatus error without
// re-running the request:
//
//	apiErr, err := httpclient.ExpectErr[Pet, APIError](ctx, client.Get("/pet/0"), http.StatusNotFound)
//
// The rendering of an *Error[E] always names the method and URL and carries
// the raw body, so contract mismatches can be diagnosed from the log line.
package httpclient
