package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/agrisiti/agrikit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ev(id string) model.Event {
	return model.Event{EventID: id, LearnerID: "ada", Activity: model.ActivityQuiz, Kind: model.KindQuizAnswered}
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		So(q.Cap(), ShouldEqual, 2)
		So(q.Len(), ShouldEqual, 0)

		Convey("Events come out in order", func() {
			So(q.Enqueue(ctx, ev("e1")), ShouldBeNil)
			So(q.Enqueue(ctx, ev("e2")), ShouldBeNil)
			So(q.Len(), ShouldEqual, 2)

			dctx, cancel := context.WithCancel(ctx)
			defer cancel()
			out := q.Dequeue(dctx)
			So((<-out).EventID, ShouldEqual, "e1")
			So((<-out).EventID, ShouldEqual, "e2")
		})

		Convey("A full queue rejects without blocking", func() {
			So(q.Enqueue(ctx, ev("e1")), ShouldBeNil)
			So(q.Enqueue(ctx, ev("e2")), ShouldBeNil)
			So(errors.Is(q.Enqueue(ctx, ev("e3")), ErrFull), ShouldBeTrue)
		})

		Convey("A cancelled context is refused", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(errors.Is(q.Enqueue(cctx, ev("e1")), context.Canceled), ShouldBeTrue)
		})

		Convey("Close drains then ends the dequeue channel", func() {
			So(q.Enqueue(ctx, ev("e1")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(errors.Is(q.Enqueue(ctx, ev("e2")), ErrClosed), ShouldBeTrue)

			var got []string
			for e := range q.Dequeue(ctx) {
				got = append(got, e.EventID)
			}
			So(got, ShouldResemble, []string{"e1"})
		})
	})

	Convey("Given a dequeue whose context ends", t, func() {
		q := NewInMemoryQueue()
		dctx, cancel := context.WithCancel(ctx)
		out := q.Dequeue(dctx)
		cancel()

		Convey("The channel closes", func() {
			select {
			case _, ok := <-out:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				So(fmt.Errorf("dequeue did not stop"), ShouldBeNil)
			}
		})
	})
}
