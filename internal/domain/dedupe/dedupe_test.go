package dedupe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	dedupe "github.com/okian/labviz/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(16))

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(context.Background(), "9780141439518")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(context.Background(), "1")
				seen := d.SeenAndRecord(context.Background(), "1")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And many keys are recorded", func() {
				const n = 1000
				for i := 0; i < n; i++ {
					So(d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", i)), ShouldBeFalse)
				}

				Convey("Then every key is kept without eviction", func() {
					So(d.Size(), ShouldEqual, int64(n))
					for i := 0; i < n; i++ {
						So(d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", i)), ShouldBeTrue)
					}
				})
			})
		})
	})
}

func TestKeyNormalization(t *testing.T) {
	Convey("Given keys that differ only in whitespace or composition", t, func() {
		composed := "M\u00fcller"
		decomposed := "Mu\u0308ller"

		Convey("When the default normalizer is used", func() {
			d := dedupe.NewInMemoryDeduper()
			So(d.SeenAndRecord(context.Background(), composed), ShouldBeFalse)

			Convey("Then equivalent keys collide", func() {
				So(d.SeenAndRecord(context.Background(), decomposed), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "  "+composed+"\t"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When normalization is disabled", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithNormalizer(nil))
			d.SeenAndRecord(context.Background(), composed)

			Convey("Then keys compare byte for byte", func() {
				So(d.SeenAndRecord(context.Background(), decomposed), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When a custom normalizer folds case", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithNormalizer(strings.ToLower))
			d.SeenAndRecord(context.Background(), "USA")

			Convey("Then keys match regardless of case", func() {
				So(d.SeenAndRecord(context.Background(), "usa"), ShouldBeTrue)
			})
		})

		Convey("NormalizeKey trims and composes", func() {
			So(dedupe.NormalizeKey(" "+decomposed+" "), ShouldEqual, composed)
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper()
		const numGoroutines = 10
		const keysPerGoroutine = 100

		Convey("When multiple goroutines record the same keys", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0

			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < keysPerGoroutine; j++ {
						if !d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", j)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each key is reported new exactly once", func() {
				So(fresh, ShouldEqual, keysPerGoroutine)
				So(d.Size(), ShouldEqual, int64(keysPerGoroutine))
			})
		})
	})
}

func TestDedupeEdgeCases(t *testing.T) {
	Convey("Given a deduper with edge cases", t, func() {
		Convey("When recording empty string", func() {
			d := dedupe.NewInMemoryDeduper()
			seen := d.SeenAndRecord(context.Background(), "")

			Convey("Then it should handle empty string", func() {
				So(seen, ShouldBeFalse)
				So(d.SeenAndRecord(context.Background(), "   "), ShouldBeTrue)
			})
		})

		Convey("When recording very long strings", func() {
			d := dedupe.NewInMemoryDeduper()
			long := strings.Repeat("a", 10000)

			So(d.SeenAndRecord(context.Background(), long), ShouldBeFalse)
			So(d.SeenAndRecord(context.Background(), long), ShouldBeTrue)
		})

		Convey("When using nil context", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should not panic", func() {
				So(func() { d.SeenAndRecord(nil, "key-1") }, ShouldNotPanic) //nolint:staticcheck // nil ctx is tolerated
			})
		})
	})
}
