package pipeline

import (
	"context"
	"testing"

	"starreview/internal/logging"
)

func TestCanTransition(t *testing.T) {
	legal := [][2]State{
		{StateIdle, StateExtractingAudio},
		{StateTranscribing, StateSamplingFrames},
		{StateTranscribing, StateAnalyzingTranscript},
		{StateAnalyzingVisual, StateAnalyzingTranscript},
		{StateResolving, StateCompleted},
		{StateSamplingFrames, StateFailed},
	}
	for _, edge := range legal {
		if !CanTransition(edge[0], edge[1]) {
			t.Fatalf("expected %s -> %s to be legal", edge[0], edge[1])
		}
	}
	illegal := [][2]State{
		{StateIdle, StateTranscribing},
		{StateCompleted, StateFailed},
		{StateFailed, StateIdle},
		{StateAnalyzingTranscript, StateSamplingFrames},
	}
	for _, edge := range illegal {
		if CanTransition(edge[0], edge[1]) {
			t.Fatalf("expected %s -> %s to be illegal", edge[0], edge[1])
		}
	}
}

func TestMachineRecordsHistoryAndPanicsOnIllegalEdge(t *testing.T) {
	var entered []State
	m := newMachine(func(s State) { entered = append(entered, s) })
	m.mustTransition(StateExtractingAudio)
	m.mustTransition(StateTranscribing)
	if len(m.history) != 3 || len(entered) != 2 {
		t.Fatalf("unexpected history %v entered %v", m.history, entered)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on illegal transition")
		}
	}()
	m.mustTransition(StateCompleted)
}

func TestMachineFailIsIdempotent(t *testing.T) {
	m := newMachine(nil)
	m.fail()
	m.fail()
	if m.state != StateFailed || len(m.history) != 2 {
		t.Fatalf("unexpected machine %+v", m.history)
	}
}

func TestTrackerIgnoresRegressions(t *testing.T) {
	var writes []Progress
	tr := &tracker{
		sink: ProgressFunc(func(_ context.Context, _ int64, p Progress) error {
			writes = append(writes, p)
			return nil
		}),
		logger: logging.NewNop(),
	}
	tr.set(context.Background(), ProgressTranscribing)
	tr.set(context.Background(), ProgressInitializing)
	tr.set(context.Background(), ProgressTranscribing)
	if len(writes) != 2 || writes[0] != ProgressTranscribing || writes[1] != ProgressTranscribing {
		t.Fatalf("unexpected writes %+v", writes)
	}
}

func TestAnalyzedProgressLabel(t *testing.T) {
	if AnalyzedProgress(0) != ProgressAudioDone {
		t.Fatal("expected plain label without frames")
	}
	if got := AnalyzedProgress(12).Stage; got != "Analyzed audio + 12 video frames" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestFutureDeliversOnce(t *testing.T) {
	f := startFuture(func() (int, error) { return 42, nil })
	if v, err := f.await(); v != 42 || err != nil {
		t.Fatalf("await = %d, %v", v, err)
	}
	r := resolvedFuture("done")
	if v, _ := r.await(); v != "done" {
		t.Fatalf("resolved future = %q", v)
	}
}
