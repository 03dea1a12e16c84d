package downloadfmt

import "testing"

func TestSanitizeFilenameReplacesIllegalChars(t *testing.T) {
	cases := map[string]string{
		`report: final?`:        "report_ final_",
		`a/b\c*d"e<f>g|h`:       "a_b_c_d_e_f_g_h",
		"  trimmed title  ":     "trimmed title",
		"already-safe-name.txt": "already-safe-name.txt",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildFilename(t *testing.T) {
	got := BuildFilename("Quiz: Chapter 1", 3, ".vtt")
	want := "Quiz_ Chapter 1_3.vtt"
	if got != want {
		t.Errorf("BuildFilename(...) = %q, want %q", got, want)
	}
}

func TestBuildFilenameStripsLeadingDotFromExtension(t *testing.T) {
	withDot := BuildFilename("title", 1, ".mp4")
	withoutDot := BuildFilename("title", 1, "mp4")
	if withDot != withoutDot {
		t.Errorf("extension with and without leading dot should produce the same filename: %q vs %q", withDot, withoutDot)
	}
}
