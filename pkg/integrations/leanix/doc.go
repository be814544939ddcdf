// Package leanix provides a client for LeanIX workspace bookmarks.
//
// # Authentication
//
// LeanIX exchanges a workspace API token for a short-lived bearer token
// through the OAuth2 client-credentials grant (client id "apitoken", the
// API token as secret). [Authenticator.Do] scopes one such credential to a
// single call: it acquires the token, runs the callback with an
// authorized *http.Client, and always ends the session afterwards, even
// when the callback fails or panics. A client used after its session ended
// returns [ErrSessionClosed].
//
// # Bookmarks
//
// [Client.ListBookmarks] lists bookmarks of one type (VISUALIZER by
// default). [Client.CreateBookmark] stores an mxGraph document as a
// free-draw visualizer bookmark:
//
//	auth := leanix.NewAuthenticator("acme.leanix.net", token)
//	client := leanix.NewClient(auth, nil)
//	b, err := client.CreateBookmark(ctx, graphXML, leanix.CreateOptions{Name: "Overview"})
//
// An empty graph document is rejected before any request is made.
package leanix
