package auth_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonwraymond/enrichment/auth"
)

func ExampleHeaderAuthenticator() {
	a := auth.NewHeaderAuthenticator("")

	req := &auth.AuthRequest{Headers: http.Header{}}
	req.Headers.Set("X-TENANT-ID", "tenant2")

	result, _ := a.Authenticate(context.Background(), req)
	fmt.Println(result.Authenticated, result.Identity.TenantID)
	// Output: true tenant2
}
