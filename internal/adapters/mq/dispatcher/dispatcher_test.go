package dispatcher

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/storefront/internal/adapters/mq/engine"
	"github.com/okian/storefront/internal/adapters/mq/message"
	"github.com/okian/storefront/internal/adapters/mq/queue"
	"github.com/okian/storefront/internal/domain/product"
	"github.com/okian/storefront/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
	"golang.org/x/text/language"
)

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithWriter(os.Stderr))
	_ = logger.SetLevelString("error")
	goleak.VerifyTestMain(m)
}

const (
	waitWindow  = 2 * time.Second
	quietWindow = 100 * time.Millisecond
)

func catalog() []product.Product {
	return []product.Product{
		{"id": 1, "name": "kettle", "price": 40.0, "category": "kitchen"},
		{"id": 2, "name": "lamp", "price": 15.0, "category": "home"},
		{"id": 3, "name": "mug", "price": 5.0, "category": "kitchen"},
	}
}

// countingResolver wraps a registry and counts engine starts.
type countingResolver struct {
	inner  *engine.Registry
	starts atomic.Int32
}

func (r *countingResolver) Resolve(path string) (engine.Factory, error) {
	f, err := r.inner.Resolve(path)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (engine.Engine, error) {
		r.starts.Add(1)
		return f(ctx)
	}, nil
}

func newResolver() *countingResolver {
	reg := engine.NewDefaultRegistry(language.English, engine.WithLogger(logger.Nop()))
	_ = reg.Register("workers/alt", engine.ProductFactory(language.English, engine.WithLogger(logger.Nop())))
	return &countingResolver{inner: reg}
}

// collector gathers responses delivered to a listener.
type collector struct {
	ch chan message.Response
}

func newCollector() *collector { return &collector{ch: make(chan message.Response, 64)} }

func (c *collector) listen(resp message.Response) { c.ch <- resp }

func (c *collector) next() (message.Response, bool) {
	select {
	case resp := <-c.ch:
		return resp, true
	case <-time.After(waitWindow):
		return nil, false
	}
}

func (c *collector) quiet() bool {
	select {
	case <-c.ch:
		return false
	case <-time.After(quietWindow):
		return true
	}
}

func TestDispatcherLifecycle(t *testing.T) {
	Convey("Given a dispatcher", t, func() {
		resolver := newResolver()
		d := New(resolver, WithLogger(logger.Nop()))
		defer func() { So(d.Close(), ShouldBeNil) }()

		Convey("When it is initialized twice with the same path", func() {
			So(d.Initialize(context.Background(), engine.DefaultEnginePath), ShouldBeNil)
			So(d.Initialize(context.Background(), engine.DefaultEnginePath), ShouldBeNil)

			Convey("Then a single engine is started", func() {
				So(int(resolver.starts.Load()), ShouldEqual, 1)
				So(d.Live(), ShouldBeTrue)
			})
		})

		Convey("When it is re-initialized with another path", func() {
			So(d.Initialize(context.Background(), engine.DefaultEnginePath), ShouldBeNil)
			So(d.Initialize(context.Background(), "workers/alt"), ShouldBeNil)

			Convey("Then the engine is replaced", func() {
				So(int(resolver.starts.Load()), ShouldEqual, 2)
				So(d.Live(), ShouldBeTrue)
			})
		})

		Convey("When the path is unknown", func() {
			err := d.Initialize(context.Background(), "workers/missing")

			Convey("Then the failure is surfaced", func() {
				So(errors.Is(err, engine.ErrEngineNotFound), ShouldBeTrue)
				So(d.Live(), ShouldBeFalse)
			})
		})

		Convey("When it is closed twice", func() {
			So(d.Initialize(context.Background(), engine.DefaultEnginePath), ShouldBeNil)
			So(d.Close(), ShouldBeNil)

			Convey("Then the second close is a no-op", func() {
				So(d.Close(), ShouldBeNil)
				So(d.Live(), ShouldBeFalse)
			})
		})
	})

	Convey("Given an engine factory that fails", t, func() {
		reg := engine.NewRegistry()
		So(reg.Register("workers/broken", func(context.Context) (engine.Engine, error) {
			return nil, errors.New("boom")
		}), ShouldBeNil)
		d := New(reg, WithLogger(logger.Nop()))

		Convey("Then Initialize reports ErrEngineStart", func() {
			err := d.Initialize(context.Background(), "workers/broken")
			So(errors.Is(err, ErrEngineStart), ShouldBeTrue)
			So(d.Live(), ShouldBeFalse)
		})
	})
}

func TestDispatcherSend(t *testing.T) {
	Convey("Given an initialized dispatcher with a listener", t, func() {
		d := New(newResolver(), WithLogger(logger.Nop()))
		defer func() { _ = d.Close() }()
		So(d.Initialize(context.Background(), engine.DefaultEnginePath), ShouldBeNil)

		c := newCollector()
		d.Subscribe(c.listen)

		Convey("When several requests are sent", func() {
			So(d.Send(context.Background(), message.FilterRequest{Products: catalog(), Criteria: product.Criteria{"category": "home"}}), ShouldBeNil)
			So(d.Send(context.Background(), message.SortRequest{Products: catalog(), SortKey: product.SortByName}), ShouldBeNil)
			So(d.Send(context.Background(), message.StatisticsRequest{Products: catalog()}), ShouldBeNil)

			Convey("Then the responses arrive in request order", func() {
				var types []message.Type
				for range 3 {
					resp, ok := c.next()
					So(ok, ShouldBeTrue)
					types = append(types, resp.Type())
				}
				So(types, ShouldResemble, []message.Type{
					message.TypeFilterProductsDone,
					message.TypeSortProductsDone,
					message.TypeCalculateStatisticsDone,
				})
			})
		})

		Convey("When an unrecognized envelope is sent", func() {
			env, err := message.New("PURGE_PRODUCTS", nil)
			So(err, ShouldBeNil)
			So(d.SendEnvelope(context.Background(), env), ShouldBeNil)

			Convey("Then no response is delivered", func() {
				So(c.quiet(), ShouldBeTrue)
			})
		})

		Convey("When the dispatcher is closed and then sent to", func() {
			So(d.Close(), ShouldBeNil)
			err := d.Send(context.Background(), message.StatisticsRequest{Products: catalog()})

			Convey("Then the send is dropped silently", func() {
				So(err, ShouldBeNil)
				So(c.quiet(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a dispatcher that was never initialized", t, func() {
		Convey("When sending in lenient mode", func() {
			d := New(newResolver(), WithLogger(logger.Nop()))
			err := d.Send(context.Background(), message.StatisticsRequest{})

			Convey("Then the message is dropped without error", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When sending in strict mode", func() {
			d := New(newResolver(), WithLogger(logger.Nop()), WithStrictSend(true))
			err := d.Send(context.Background(), message.StatisticsRequest{})

			Convey("Then ErrEngineUnavailable is returned", func() {
				So(errors.Is(err, ErrEngineUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestDispatcherListeners(t *testing.T) {
	Convey("Given a dispatcher with two listeners", t, func() {
		d := New(newResolver(), WithLogger(logger.Nop()))
		defer func() { _ = d.Close() }()
		So(d.Initialize(context.Background(), engine.DefaultEnginePath), ShouldBeNil)

		var mu sync.Mutex
		var order []string
		first := newCollector()
		second := newCollector()
		firstID := d.Subscribe(func(resp message.Response) {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
			first.listen(resp)
		})
		d.Subscribe(func(resp message.Response) {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
			second.listen(resp)
		})

		Convey("When a response is delivered", func() {
			So(d.Send(context.Background(), message.FilterRequest{Products: catalog()}), ShouldBeNil)
			a, okA := first.next()
			b, okB := second.next()

			Convey("Then listeners run in registration order with their own copies", func() {
				So(okA && okB, ShouldBeTrue)
				mu.Lock()
				So(order, ShouldResemble, []string{"first", "second"})
				mu.Unlock()

				a.(message.FilterResult).Products[0]["name"] = "changed"
				So(b.(message.FilterResult).Products[0]["name"], ShouldEqual, "kettle")
			})
		})

		Convey("When the first listener unsubscribes", func() {
			d.Unsubscribe(firstID)
			d.Unsubscribe(SubscriptionID(999))
			So(d.Send(context.Background(), message.StatisticsRequest{Products: catalog()}), ShouldBeNil)

			Convey("Then only the second listener is called", func() {
				_, ok := second.next()
				So(ok, ShouldBeTrue)
				So(first.quiet(), ShouldBeTrue)
			})
		})
	})
}

func TestDispatcherListenerFailures(t *testing.T) {
	Convey("Given a dispatcher whose first listener panics", t, func() {
		d := New(newResolver(), WithLogger(logger.Nop()))
		defer func() { _ = d.Close() }()
		So(d.Initialize(context.Background(), engine.DefaultEnginePath), ShouldBeNil)

		var panics atomic.Int32
		healthy := newCollector()
		So(d.Subscribe(nil), ShouldEqual, SubscriptionID(0))
		d.Subscribe(func(message.Response) {
			panics.Add(1)
			panic("listener exploded")
		})
		d.Subscribe(healthy.listen)

		Convey("When two responses are delivered", func() {
			So(d.Send(context.Background(), message.StatisticsRequest{Products: catalog()}), ShouldBeNil)
			So(d.Send(context.Background(), message.FilterRequest{Products: catalog()}), ShouldBeNil)
			first, okFirst := healthy.next()
			second, okSecond := healthy.next()

			Convey("Then the healthy listener still receives both in order", func() {
				So(okFirst && okSecond, ShouldBeTrue)
				So(first.Type(), ShouldEqual, message.TypeCalculateStatisticsDone)
				So(second.Type(), ShouldEqual, message.TypeFilterProductsDone)
				So(int(panics.Load()), ShouldEqual, 2)
				So(d.Live(), ShouldBeTrue)
			})
		})
	})
}

func TestDispatcherCloseDiscardsPendingWork(t *testing.T) {
	Convey("Given a dispatcher with many queued requests", t, func() {
		d := New(newResolver(), WithLogger(logger.Nop()))
		So(d.Initialize(context.Background(), engine.DefaultEnginePath), ShouldBeNil)

		var delivered atomic.Int32
		d.Subscribe(func(message.Response) { delivered.Add(1) })

		big := make([]product.Product, 0, 2000)
		for i := range 2000 {
			big = append(big, product.Product{"id": i, "name": "item", "price": float64(i % 97)})
		}
		for range 50 {
			_ = d.Send(context.Background(), message.SortRequest{Products: big, SortKey: product.SortByName})
		}

		Convey("When it is closed immediately", func() {
			So(d.Close(), ShouldBeNil)
			time.Sleep(quietWindow)
			settled := delivered.Load()
			time.Sleep(quietWindow)

			Convey("Then the discarded work never produces a response", func() {
				So(delivered.Load(), ShouldEqual, settled)
				So(d.Live(), ShouldBeFalse)
			})
		})
	})
}

// stubEngine rejects every post with a fixed error.
type stubEngine struct {
	err  error
	out  chan message.Envelope
	done chan struct{}
	once sync.Once
}

func newStubEngine(err error) *stubEngine {
	return &stubEngine{err: err, out: make(chan message.Envelope), done: make(chan struct{})}
}

func (s *stubEngine) Post(context.Context, message.Envelope) error { return s.err }
func (s *stubEngine) Responses() <-chan message.Envelope          { return s.out }
func (s *stubEngine) Done() <-chan struct{}                        { return s.done }
func (s *stubEngine) Terminate(context.Context) error {
	s.once.Do(func() {
		close(s.out)
		close(s.done)
	})
	return nil
}

type stubResolver struct{ eng engine.Engine }

func (r stubResolver) Resolve(string) (engine.Factory, error) {
	return func(context.Context) (engine.Engine, error) { return r.eng, nil }, nil
}

func TestDispatcherBackpressure(t *testing.T) {
	Convey("Given an engine whose queue is full", t, func() {
		d := New(stubResolver{eng: newStubEngine(queue.ErrFull)}, WithLogger(logger.Nop()))
		defer func() { _ = d.Close() }()
		So(d.Initialize(context.Background(), "stub"), ShouldBeNil)

		Convey("Then Send reports ErrBackpressure", func() {
			err := d.Send(context.Background(), message.StatisticsRequest{})
			So(errors.Is(err, ErrBackpressure), ShouldBeTrue)
		})
	})

	Convey("Given an engine that is shutting down", t, func() {
		d := New(stubResolver{eng: newStubEngine(queue.ErrClosed)}, WithLogger(logger.Nop()), WithStrictSend(true))
		defer func() { _ = d.Close() }()
		So(d.Initialize(context.Background(), "stub"), ShouldBeNil)

		Convey("Then Send treats it as unavailable", func() {
			err := d.Send(context.Background(), message.StatisticsRequest{})
			So(errors.Is(err, ErrEngineUnavailable), ShouldBeTrue)
		})
	})
}

func TestMount(t *testing.T) {
	Convey("Given a mounted dispatcher", t, func() {
		resolver := newResolver()
		var captured *Dispatcher

		Convey("When the scope returns normally", func() {
			c := newCollector()
			err := Mount(context.Background(), resolver, engine.DefaultEnginePath, func(d *Dispatcher) error {
				captured = d
				d.Subscribe(c.listen)
				if err := d.Send(context.Background(), message.StatisticsRequest{Products: catalog()}); err != nil {
					return err
				}
				_, ok := c.next()
				if !ok {
					return errors.New("no response")
				}
				return nil
			}, WithLogger(logger.Nop()))

			Convey("Then the result is returned and the engine is torn down", func() {
				So(err, ShouldBeNil)
				So(captured.Live(), ShouldBeFalse)
			})
		})

		Convey("When the scope fails", func() {
			sentinel := errors.New("scope failed")
			err := Mount(context.Background(), resolver, engine.DefaultEnginePath, func(d *Dispatcher) error {
				captured = d
				return sentinel
			}, WithLogger(logger.Nop()))

			Convey("Then the error propagates and the engine is torn down", func() {
				So(errors.Is(err, sentinel), ShouldBeTrue)
				So(captured.Live(), ShouldBeFalse)
			})
		})

		Convey("When the scope panics", func() {
			So(func() {
				_ = Mount(context.Background(), resolver, engine.DefaultEnginePath, func(d *Dispatcher) error {
					captured = d
					panic("boom")
				}, WithLogger(logger.Nop()))
			}, ShouldPanic)

			Convey("Then the engine is still torn down", func() {
				So(captured.Live(), ShouldBeFalse)
			})
		})

		Convey("When the path cannot be resolved", func() {
			called := false
			err := Mount(context.Background(), resolver, "workers/missing", func(*Dispatcher) error {
				called = true
				return nil
			}, WithLogger(logger.Nop()))

			Convey("Then the scope is not run", func() {
				So(errors.Is(err, engine.ErrEngineNotFound), ShouldBeTrue)
				So(called, ShouldBeFalse)
			})
		})
	})
}
