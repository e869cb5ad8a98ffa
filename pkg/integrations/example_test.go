package integrations_test

import (
	"errors"
	"fmt"

	"github.com/blockprint/blockprint/pkg/integrations"
)

func ExampleJoinURL() {
	fmt.Println(integrations.JoinURL("http://localhost:8000/", "/api/health"))
	// Output: http://localhost:8000/api/health
}

func ExampleStatusError() {
	err := error(&integrations.StatusError{Code: 404, Detail: "blueprint missing"})
	fmt.Println(err)
	fmt.Println(errors.Is(err, integrations.ErrNotFound))
	// Output:
	// status 404: blueprint missing
	// true
}
