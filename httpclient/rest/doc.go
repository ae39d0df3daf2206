// Package rest is the JSON flavour of httpclient for callers that never need
// another wire format.
//
//	client, err := rest.New(httpclient.Config{
//	    BaseURL: "https://petstore.example.com/v2",
//	    Auth:    httpclient.BearerAuth("token"),
//	})
//
//	pet, err := rest.Get[Pet, APIError](ctx, client, "/pet/1")
//
//	// Requests built on the client work too.
//	pet, err = rest.Receive[Pet, APIError](ctx, client.Get("/pet/1").Query("fields", "name"))
//
//	// Assert a documented error response.
//	apiErr, err := rest.ExpectError[Pet, APIError](ctx, client.Get("/pet/0"), http.StatusNotFound)
package rest
