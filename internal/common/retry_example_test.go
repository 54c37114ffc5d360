package common_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"os228/internal/common"
)

// ExampleDo demonstrates a call that succeeds after a transient failure.
func ExampleDo() {
	ctx := context.Background()

	attempts := 0
	err := common.Do(ctx, func() error {
		attempts++
		if attempts < 2 {
			return errors.New("502 bad gateway")
		}
		return nil
	}, common.WithInitialDelay(time.Millisecond))

	fmt.Println("attempts:", attempts, "err:", err)
	// Output: attempts: 2 err: <nil>
}

// ExampleDo_exhausted shows the error returned once every retry has failed.
func ExampleDo_exhausted() {
	ctx := context.Background()

	err := common.Do(ctx,
		func() error {
			return errors.New("connection reset")
		},
		common.WithMaxRetries(2),
		common.WithInitialDelay(time.Millisecond),
		common.WithMaxDelay(5*time.Millisecond),
	)

	fmt.Println(err)
	// Output: retry failed after 3 attempts: connection reset
}

// ExampleWithRetryIf shows a client error that is returned without retrying,
// the way user event requests treat 4xx responses.
func ExampleWithRetryIf() {
	ctx := context.Background()
	errNotFound := errors.New("404 not found")

	attempts := 0
	err := common.Do(ctx,
		func() error {
			attempts++
			return errNotFound
		},
		common.WithRetryIf(func(err error) bool {
			return !errors.Is(err, errNotFound)
		}),
	)

	fmt.Println("attempts:", attempts, "not found:", errors.Is(err, errNotFound))
	// Output: attempts: 1 not found: true
}
