package cache_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"image-stylizer/internal/cache"
	"image-stylizer/internal/cache/memory"
	"image-stylizer/internal/cache/mock"
	"image-stylizer/internal/logger"
	"image-stylizer/internal/tracing/test"
)

var mockLoaderFunc cache.LoaderFunc = func(ctx context.Context, key string) (data []byte, err error) {
	if key == "notfounderr" {
		return nil, fmt.Errorf("notfounderr")
	}

	return []byte(key), nil
}

func TestAuto(t *testing.T) {
	tracer := test.Tracer(logger.Discard())

	auto := &cache.Auto{
		Tracer:   tracer,
		Provider: &mock.Provider{},
		Loader:   mockLoaderFunc,
	}

	tests := []struct {
		Key           string
		ExpectedError error
	}{
		{"foo", nil},
		{"notfound", nil},
		{"notfounderr", fmt.Errorf("notfounderr")},
		{"seterror", fmt.Errorf("seterror")},
		{"error", fmt.Errorf("error")},
	}

	for _, test := range tests {
		data, err := auto.Get(context.Background(), test.Key)
		if err != nil {
			if test.ExpectedError == nil {
				t.Errorf("%s: %s", test.Key, err)
				continue
			}

			if test.ExpectedError.Error() != err.Error() {
				t.Errorf("%s: wrong error: %s", test.Key, err)
				continue
			}

			continue
		}

		if test.ExpectedError != nil {
			t.Errorf("%s: expected error %s", test.Key, test.ExpectedError)
			continue
		}

		if string(data) != test.Key {
			t.Errorf("%s: wrong data", test.Key)
		}
	}
}

func TestAutoLoadsOnce(t *testing.T) {
	var loads int32
	release := make(chan struct{})

	auto := &cache.Auto{
		Tracer:   test.Tracer(logger.Discard()),
		Provider: memory.New(0),
		Loader: func(ctx context.Context, key string) ([]byte, error) {
			atomic.AddInt32(&loads, 1)
			<-release
			return []byte("rendered"), nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := auto.Get(context.Background(), "key")
			if err != nil || string(data) != "rendered" {
				t.Errorf("got %q, %v", data, err)
			}
		}()
	}

	// Give the goroutines time to join the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if _, err := auto.Get(context.Background(), "key"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&loads); n < 1 || n > 10 {
		t.Fatalf("unexpected load count %d", n)
	}

	before := atomic.LoadInt32(&loads)
	if _, err := auto.Get(context.Background(), "key"); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&loads) != before {
		t.Fatal("cached value was loaded again")
	}
}
