package detector

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// tensor builds a [1, 4+len(scores[0]), anchors] output from per-anchor rows.
func tensor(boxes []Box, scores [][]float32) ([]float32, []int64) {
	anchors := len(boxes)
	rows := 4 + len(scores[0])
	out := make([]float32, rows*anchors)
	for i, b := range boxes {
		out[0*anchors+i] = b.CX
		out[1*anchors+i] = b.CY
		out[2*anchors+i] = b.W
		out[3*anchors+i] = b.H
		for c, s := range scores[i] {
			out[(4+c)*anchors+i] = s
		}
	}
	return out, []int64{1, int64(rows), int64(anchors)}
}

func TestDecode(t *testing.T) {
	classes := []string{"person", "helmet", "motorcycle"}
	out, shape := tensor(
		[]Box{{10, 10, 4, 4}, {50, 50, 8, 8}, {90, 90, 2, 2}},
		[][]float32{
			{0.9, 0.1, 0.0},
			{0.2, 0.7, 0.3},
			{0.1, 0.2, 0.3},
		},
	)

	got, err := Decode(out, shape, classes, 0.5)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 detections, got %d: %+v", len(got), got)
	}
	if got[0].Label != "person" || got[0].Box != (Box{10, 10, 4, 4}) {
		t.Errorf("unexpected first detection %+v", got[0])
	}
	if got[1].Label != "helmet" || got[1].Confidence != 0.7 {
		t.Errorf("unexpected second detection %+v", got[1])
	}
}

func TestDecode_ShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		output  []float32
		shape   []int64
		classes []string
	}{
		{name: "wrong rank", output: make([]float32, 10), shape: []int64{5, 2}, classes: []string{"a"}},
		{name: "class mismatch", output: make([]float32, 12), shape: []int64{1, 6, 2}, classes: []string{"a"}},
		{name: "short output", output: make([]float32, 3), shape: []int64{1, 5, 2}, classes: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.output, tt.shape, tt.classes, 0.5); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNonMaxSuppression(t *testing.T) {
	detections := []Detection{
		{Label: "person", Confidence: 0.8, Box: Box{10, 10, 10, 10}},
		{Label: "person", Confidence: 0.9, Box: Box{11, 11, 10, 10}},
		{Label: "person", Confidence: 0.7, Box: Box{60, 60, 10, 10}},
		{Label: "helmet", Confidence: 0.6, Box: Box{10, 10, 10, 10}},
	}

	got := NonMaxSuppression(detections, 0.45)
	labels := Labels(got)

	want := []string{"person", "person", "helmet"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	if got[0].Confidence != 0.9 {
		t.Errorf("expected the most confident overlapping box to survive, got %+v", got[0])
	}
}

func TestBoxIoU(t *testing.T) {
	a := Box{CX: 5, CY: 5, W: 10, H: 10}

	if iou := a.IoU(a); iou != 1 {
		t.Errorf("IoU with itself = %f, want 1", iou)
	}
	if iou := a.IoU(Box{CX: 50, CY: 50, W: 10, H: 10}); iou != 0 {
		t.Errorf("IoU of disjoint boxes = %f, want 0", iou)
	}
	half := a.IoU(Box{CX: 10, CY: 5, W: 10, H: 10})
	if half < 0.33 || half > 0.34 {
		t.Errorf("IoU of half-overlapping boxes = %f, want ~1/3", half)
	}
}

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	content := `{"input_shape":[1,3,640,640],"output_shape":[1,7,8400],"classes":["person","helmet","seatbelt"],"image_size":640}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	md, err := loadMetadata(path)
	if err != nil {
		t.Fatalf("loadMetadata() error = %v", err)
	}
	if md.InputName != "images" || md.OutputName != "output0" {
		t.Errorf("expected default tensor names, got %q/%q", md.InputName, md.OutputName)
	}
	if len(md.Classes) != 3 {
		t.Errorf("expected 3 classes, got %d", len(md.Classes))
	}

	if err := os.WriteFile(path, []byte(`{"classes":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadMetadata(path); err == nil {
		t.Error("expected error for metadata without image size")
	}
}
