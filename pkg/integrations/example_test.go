package integrations_test

import (
	"fmt"
	"net/url"

	"github.com/matzehuels/xmigraph/pkg/integrations"
)

func ExampleServiceURL() {
	q := url.Values{"bookmarkType": {"VISUALIZER"}}
	fmt.Println(integrations.ServiceURL("demo-eu.leanix.net", "/services/pathfinder/v1/bookmarks", q))
	fmt.Println(integrations.ServiceURL("http://127.0.0.1:8080/", "services/mtm/v1/oauth2/token", nil))
	// Output:
	// https://demo-eu.leanix.net/services/pathfinder/v1/bookmarks?bookmarkType=VISUALIZER
	// http://127.0.0.1:8080/services/mtm/v1/oauth2/token
}

func Example_errors() {
	fmt.Println("ErrNotFound:", integrations.ErrNotFound)
	fmt.Println("ErrNetwork:", integrations.ErrNetwork)
	fmt.Println("ErrUnauthorized:", integrations.ErrUnauthorized)
	// Output:
	// ErrNotFound: resource not found
	// ErrNetwork: network error
	// ErrUnauthorized: unauthorized
}
