package summarize_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/enrichment/prompt"
	"github.com/jonwraymond/enrichment/summarize"
	"github.com/jonwraymond/enrichment/tenant"
	"github.com/jonwraymond/enrichment/upstream"
)

func ExampleService_Summarize() {
	sim := upstream.NewSimulator(upstream.WithFailureRate(0), upstream.WithFixedLatency(0))
	svc, err := summarize.New(tenant.NewDefaultStore(), prompt.NewTemplateBuilder(), sim)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	res, err := svc.Summarize(context.Background(), "tenant3", "Go schedules goroutines onto OS threads.")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(res.Summary)
	// Output:
	// Summary: Please summarize the following... Text to summarize:... Go schedules goroutines onto O... Technical analysis complete. Key findings documented above.
}

func ExampleKind() {
	svc, _ := summarize.New(tenant.NewDefaultStore(), prompt.NewTemplateBuilder(), upstream.NewScript())

	_, err := svc.Summarize(context.Background(), "tenant2", strings.Repeat("x", 201))
	fmt.Println(summarize.Kind(err))

	var limitErr *summarize.TokenLimitError
	if errors.As(err, &limitErr) {
		fmt.Println(limitErr.Actual, limitErr.Limit)
	}
	// Output:
	// token_limit_exceeded
	// 201 200
}
