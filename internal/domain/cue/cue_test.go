package cue

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPalette(t *testing.T) {
	Convey("Given the two palettes", t, func() {
		So(QuizPalette.Tone(Good).FrequencyHz, ShouldEqual, 880)
		So(QuizPalette.Tone(Bad).FrequencyHz, ShouldEqual, 220)
		So(ActivityPalette.Tone(Good).FrequencyHz, ShouldEqual, 740)
		So(ActivityPalette.Tone(Bad).FrequencyHz, ShouldEqual, 240)
		So(ActivityPalette.Tone(Good).DurationMS, ShouldEqual, 140)
	})
}

func TestEmit(t *testing.T) {
	Convey("Given a recorder", t, func() {
		ctx := context.Background()
		rec := &Recorder{}

		Convey("Tones are recorded only when sound is on", func() {
			Emit(ctx, rec, false, QuizPalette.Tone(Good))
			Emit(ctx, rec, true, QuizPalette.Tone(Bad))
			tones := rec.Drain()
			So(tones, ShouldHaveLength, 1)
			So(tones[0].Kind, ShouldEqual, Bad)
			So(rec.Drain(), ShouldBeEmpty)
		})

		Convey("Failing players are swallowed", func() {
			failing := PlayerFunc(func(context.Context, Tone) error { return errors.New("audio blocked") })
			panicky := PlayerFunc(func(context.Context, Tone) error { panic("no audio device") })
			So(func() { Emit(ctx, failing, true, QuizPalette.Tone(Good)) }, ShouldNotPanic)
			So(func() { Emit(ctx, panicky, true, QuizPalette.Tone(Good)) }, ShouldNotPanic)
			So(func() { Emit(ctx, nil, true, QuizPalette.Tone(Good)) }, ShouldNotPanic)
		})
	})
}
