package cache_test

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/tessera-run/tessera/internal/cache"
	"github.com/tessera-run/tessera/internal/program"
)

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return cache.New(program.DefaultRegistry(), logger)
}

func compile(t *testing.T, source string) []byte {
	t.Helper()
	buf, err := program.Compile(source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return buf
}

func TestRegisterPrepareIdentity(t *testing.T) {
	c := newTestCache(t)
	buf := compile(t, "fn sum(tensor, tensor) -> (tensor) = tensor.add\nfn pass(tensor) -> (tensor) = identity")

	c.Register("p", buf)

	entry := c.Prepare("p")
	if entry == nil {
		t.Fatal("Prepare returned nil after Register")
	}
	if entry.Program.Function("sum") == nil || entry.Program.Function("pass") == nil {
		t.Error("prepared program missing declared functions")
	}
	if len(entry.Bytes) != len(buf) {
		t.Error("entry does not carry the backing bytes")
	}
}

func TestPrepareUnregistered(t *testing.T) {
	c := newTestCache(t)
	if entry := c.Prepare("ghost"); entry != nil {
		t.Errorf("Prepare(ghost) = %v, want nil", entry)
	}
}

func TestRegisterBadBytesDropped(t *testing.T) {
	c := newTestCache(t)
	c.Register("broken", []byte("not a compiled program"))

	if c.Prepare("broken") != nil {
		t.Error("entry created for unparsable bytes")
	}
	if len(c.Names()) != 0 {
		t.Errorf("Names() = %v, want empty", c.Names())
	}
}

func TestReRegistrationLastWriteWins(t *testing.T) {
	c := newTestCache(t)
	b1 := compile(t, "fn f(tensor) -> (tensor) = identity")
	b2 := compile(t, "fn g(tensor, tensor) -> (tensor) = tensor.add")

	c.Register("p", b1)
	old := c.Prepare("p")

	c.Register("p", b2)

	// The cache now reflects b2.
	fresh := c.Prepare("p")
	if fresh.Program.Function("g") == nil {
		t.Error("cache does not reflect the second registration")
	}
	if fresh.Program.Function("f") != nil {
		t.Error("cache still exposes the first registration's function")
	}

	// An execution holding the old entry keeps observing b1.
	if old.Program.Function("f") == nil {
		t.Error("old entry lost its function after re-registration")
	}
}

func TestConcurrentRegistrationDistinctNames(t *testing.T) {
	c := newTestCache(t)
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		buf := compile(t, "fn pass(tensor) -> (tensor) = identity")
		name := fmt.Sprintf("p%02d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Register(name, buf)
		}()
	}
	wg.Wait()

	names := c.Names()
	if len(names) != n {
		t.Fatalf("cache has %d programs, want %d", len(names), n)
	}
	for i := 0; i < n; i++ {
		if c.Prepare(fmt.Sprintf("p%02d", i)) == nil {
			t.Errorf("program p%02d lost during concurrent registration", i)
		}
	}
}

func TestNamesSorted(t *testing.T) {
	c := newTestCache(t)
	buf := compile(t, "fn pass(tensor) -> (tensor) = identity")
	for _, name := range []string{"zeta", "alpha", "mid"} {
		c.Register(name, buf)
	}

	want := []string{"alpha", "mid", "zeta"}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
