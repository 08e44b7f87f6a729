package dub

import (
	"bytes"
	"context"
	"log"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

func TestSplitDataGroups(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want [][]string
	}{
		{
			name: "three groups",
			out:  "source\n.dub/packages/lib/source\n\nviews\n\nsource/app.d\nsource/util.d\n",
			want: [][]string{
				{"source", ".dub/packages/lib/source"},
				{"views"},
				{"source/app.d", "source/util.d"},
			},
		},
		{
			name: "missing trailing groups are padded",
			out:  "source\n",
			want: [][]string{{"source"}, {}, {}},
		},
		{
			name: "empty output",
			out:  "",
			want: [][]string{{}, {}, {}},
		},
		{
			name: "windows line endings",
			out:  "source\r\n\r\nviews\r\n\r\nsource/app.d\r\n",
			want: [][]string{{"source"}, {"views"}, {"source/app.d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitDataGroups(tt.out, 3)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitDataGroups = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribePathsLogsInvocation(t *testing.T) {
	// echo stands in for dub: it exits zero and prints its arguments, which
	// is enough to exercise the invocation path end to end.
	echo, err := exec.LookPath("echo")
	if err != nil {
		t.Skipf("echo not on PATH: %v", err)
	}
	var buf bytes.Buffer
	tool := &Tool{bin: echo, log: log.New(&buf, "", 0)}

	settings := Settings{Root: t.TempDir(), Configuration: "application"}
	if _, err := tool.DescribePaths(context.Background(), settings); err != nil {
		t.Fatalf("DescribePaths: %v", err)
	}
	logged := buf.String()
	if !strings.Contains(logged, "describe") || !strings.Contains(logged, "--config=application") {
		t.Fatalf("invocation not logged: %q", logged)
	}
}

func TestSettingsFlags(t *testing.T) {
	s := Settings{
		Configuration: "application",
		ArchType:      "x86_64",
		BuildType:     "debug",
		Compiler:      "dmd",
	}
	want := []string{"--config=application", "--arch=x86_64", "--build=debug", "--compiler=dmd"}
	if got := s.flags(); !reflect.DeepEqual(got, want) {
		t.Fatalf("flags = %v, want %v", got, want)
	}
	if got := (Settings{}).flags(); len(got) != 0 {
		t.Fatalf("flags on zero settings = %v, want none", got)
	}
}
