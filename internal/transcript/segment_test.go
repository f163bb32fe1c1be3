package transcript

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegmentJoinsWrappedLines(t *testing.T) {
	got := Segment("女の学生はこの後何\nをしなければなりませんか。")
	want := []string{"女の学生はこの後何をしなければなりませんか。"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %q", got)
	}
}

func TestSegmentSplitsOnFinalMarks(t *testing.T) {
	got := Segment("すみません。駅はどこですか？ありがとう！")
	want := []string{"すみません。", "駅はどこですか？", "ありがとう！"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %q", got)
	}
}

func TestSegmentSplitsBeforeMarkers(t *testing.T) {
	got := Segment("男：行きましょう 女:はい。男:じゃあ")
	want := []string{"男：行きましょう", "女:はい。", "男:じゃあ"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %q", got)
	}
}

func TestSegmentTrimsFragments(t *testing.T) {
	got := Segment("  \n男:女：\r\n  はい。  。")
	want := []string{"男:", "女：  はい。", "。"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %q", got)
	}
	for _, s := range got {
		if strings.TrimSpace(s) == "" {
			t.Fatalf("blank segment in %q", got)
		}
	}
}

func TestSegmentWithoutPunctuation(t *testing.T) {
	got := Segment("  日本語を勉強しています  ")
	want := []string{"日本語を勉強しています"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %q", got)
	}
	if got := Segment(" \n\n "); len(got) != 0 {
		t.Fatalf("expected no segments for blank input, got %q", got)
	}
}

func TestSegmentRejoinReproducesInput(t *testing.T) {
	inputs := []string{
		"女:これは何ですか。男：本です。\nそうですか！",
		"A:hello.男:わかりました。女の人？",
	}
	for _, in := range inputs {
		joined := strings.Join(Segment(in), "")
		want := strings.ReplaceAll(in, "\n", "")
		if joined != want {
			t.Fatalf("rejoin mismatch: got %q want %q", joined, want)
		}
	}
}

func TestSegmentLookalikeMarker(t *testing.T) {
	got := Segment("男:元気？⼥:元気です。")
	want := []string{"男:元気？", "⼥:元気です。"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected segments: %q", got)
	}
}
