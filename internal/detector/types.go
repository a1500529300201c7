package detector

// Metadata describes an exported detection model. It sits next to the
// .onnx file as JSON.
type Metadata struct {
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// Box is an axis-aligned box in model input pixels, centre-based.
type Box struct {
	CX, CY, W, H float32
}

func (b Box) area() float32 {
	return b.W * b.H
}

// IoU is the intersection over union of two boxes.
func (b Box) IoU(o Box) float32 {
	x1 := max(b.CX-b.W/2, o.CX-o.W/2)
	y1 := max(b.CY-b.H/2, o.CY-o.H/2)
	x2 := min(b.CX+b.W/2, o.CX+o.W/2)
	y2 := min(b.CY+b.H/2, o.CY+o.H/2)

	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := b.area() + o.area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

type Detection struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	Box        Box     `json:"-"`
}
