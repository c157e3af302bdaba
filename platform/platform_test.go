package platform_test

import (
	"testing"

	"github.com/ixchow/maek/platform"
)

func TestSuffixTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tag     platform.Tag
		obj     string
		exe     string
	}{
		{platform.Linux, ".o", ""},
		{platform.MacOS, ".o", ""},
		{platform.Windows, ".obj", ".exe"},
	}
	for _, tt := range tests {
		if got := tt.tag.ObjSuffix(); got != tt.obj {
			t.Errorf("%s: got obj suffix %q, wanted %q", tt.tag, got, tt.obj)
		}
		if got := tt.tag.ExeSuffix(); got != tt.exe {
			t.Errorf("%s: got exe suffix %q, wanted %q", tt.tag, got, tt.exe)
		}
	}
}

func TestUnsupportedPlatformPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an unsupported platform")
		}
	}()
	platform.Tag("plan9").ObjSuffix()
}

func TestMergeOverridesScalarsAndConcatenatesSlices(t *testing.T) {
	t.Parallel()
	base := platform.Options{
		ObjPrefix: "objs/",
		CPPFlags:  []string{"-Wall"},
	}
	override := platform.Options{
		ObjPrefix: "build/",
		CPPFlags:  []string{"-O2"},
	}
	got := base.Merge(override)
	if got.ObjPrefix != "build/" {
		t.Errorf("got ObjPrefix %q, wanted override to win", got.ObjPrefix)
	}
	if len(got.CPPFlags) != 2 || got.CPPFlags[0] != "-Wall" || got.CPPFlags[1] != "-O2" {
		t.Errorf("got CPPFlags %v, wanted concatenation", got.CPPFlags)
	}
}

func TestFromMapRejectsUnknownKey(t *testing.T) {
	t.Parallel()
	_, err := platform.FromMap(map[string]any{"bogus": "value"})
	if err == nil {
		t.Fatal("expected an error for an unknown option key")
	}
}

func TestFromMapBuildsOptions(t *testing.T) {
	t.Parallel()
	o, err := platform.FromMap(map[string]any{
		"objPrefix": "out/",
		"CPPFlags":  []string{"-O2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ObjPrefix != "out/" {
		t.Errorf("got ObjPrefix %q, wanted %q", o.ObjPrefix, "out/")
	}
	if len(o.CPPFlags) != 1 || o.CPPFlags[0] != "-O2" {
		t.Errorf("got CPPFlags %v, wanted [-O2]", o.CPPFlags)
	}
}
